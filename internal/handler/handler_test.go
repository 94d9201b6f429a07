package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"noteshelf/internal/auth"
	"noteshelf/internal/domain/models"
	"noteshelf/internal/middleware"
	"noteshelf/internal/repository/memory"
	"noteshelf/internal/service"
)

const testSecret = "handler-test-secret"

type testServer struct {
	handler http.Handler
	store   *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()

	folderService := service.NewFolderService(
		store.Folders(),
		store.Notes(),
		store.Transactions(),
		service.NewHierarchyValidator(2),
		logger,
	)
	noteService := service.NewNoteService(store.Notes(), store.Folders(), logger)

	mux := http.NewServeMux()
	RegisterRoutes(mux, NewFolderHandler(folderService, logger), NewNoteHandler(noteService, logger))

	verifier, err := auth.NewHMACVerifier(testSecret, logger)
	require.NoError(t, err)

	var h http.Handler = mux
	h = middleware.AuthMiddleware(verifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	return &testServer{handler: h, store: store}
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	claims := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: models.RoleUser,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

// do sends a request as userID (anonymous when empty) and returns the recorder
func (s *testServer) do(t *testing.T, userID, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = bytes.NewBufferString(raw)
		} else {
			payload, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(payload)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", bearer(t, userID))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) createFolder(t *testing.T, userID, name string, parentID *string) models.Folder {
	t.Helper()
	rec := s.do(t, userID, http.MethodPost, "/api/folders", map[string]interface{}{"name": name, "parent_id": parentID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Folder](t, rec)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, "", http.MethodGet, "/api/folders", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodGet, "/api/folders", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateFolderErrors(t *testing.T) {
	s := newTestServer(t)
	root := s.createFolder(t, "u1", "CS101", nil)
	child := s.createFolder(t, "u1", "Midterm", &root.ID)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantKind   string
	}{
		{name: "blank name", body: map[string]interface{}{"name": "   "}, wantStatus: http.StatusBadRequest, wantKind: "invalid_name"},
		{name: "duplicate ignoring case", body: map[string]interface{}{"name": "cs101"}, wantStatus: http.StatusConflict, wantKind: "duplicate_name"},
		{name: "missing parent", body: map[string]interface{}{"name": "X", "parent_id": "00000000-0000-0000-0000-000000000001"}, wantStatus: http.StatusBadRequest, wantKind: "parent_not_found"},
		{name: "too deep", body: map[string]interface{}{"name": "Week 1", "parent_id": child.ID}, wantStatus: http.StatusBadRequest, wantKind: "depth_exceeded"},
		{name: "malformed json", body: "{", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, "u1", http.MethodPost, "/api/folders", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantKind != "" {
				problem := decode[map[string]interface{}](t, rec)
				assert.Equal(t, tt.wantKind, problem["kind"])
				assert.NotEmpty(t, problem["detail"])
			}
		})
	}
}

func TestFolderRoutes(t *testing.T) {
	s := newTestServer(t)
	cs := s.createFolder(t, "u1", "CS101", nil)
	mid := s.createFolder(t, "u1", "Midterm", &cs.ID)
	art := s.createFolder(t, "u1", "art", nil)

	t.Run("get", func(t *testing.T) {
		rec := s.do(t, "u1", http.MethodGet, "/api/folders/"+mid.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[models.Folder](t, rec)
		assert.Equal(t, "Midterm", got.Name)
		assert.Equal(t, cs.ID, *got.ParentID)
	})

	t.Run("other owner sees nothing", func(t *testing.T) {
		rec := s.do(t, "u2", http.MethodGet, "/api/folders/"+mid.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "folder_not_found", decode[map[string]interface{}](t, rec)["kind"])

		rec = s.do(t, "u2", http.MethodGet, "/api/folders", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[[]models.Folder](t, rec))
	})

	t.Run("search", func(t *testing.T) {
		rec := s.do(t, "u1", http.MethodGet, "/api/folders?search=MID", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[[]models.Folder](t, rec)
		require.Len(t, got, 1)
		assert.Equal(t, mid.ID, got[0].ID)
	})

	t.Run("tree", func(t *testing.T) {
		rec := s.do(t, "u1", http.MethodGet, "/api/folders/tree", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		tree := decode[[]models.FolderTreeNode](t, rec)
		require.Len(t, tree, 2)
		assert.Equal(t, "art", tree[0].Folder.Name)
		assert.Equal(t, "CS101", tree[1].Folder.Name)
		require.Len(t, tree[1].Children, 1)
		assert.Equal(t, mid.ID, tree[1].Children[0].Folder.ID)
	})

	t.Run("parent options exclude max depth", func(t *testing.T) {
		rec := s.do(t, "u1", http.MethodGet, "/api/folders/parent-options", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		options := decode[[]models.ParentOption](t, rec)
		ids := make([]string, 0, len(options))
		for _, o := range options {
			ids = append(ids, o.ID)
		}
		assert.Equal(t, []string{art.ID, cs.ID}, ids)
	})

	t.Run("ordered", func(t *testing.T) {
		rec := s.do(t, "u1", http.MethodGet, "/api/folders/ordered", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[[]models.Folder](t, rec)
		require.Len(t, got, 3)
		assert.Equal(t, []string{art.ID, cs.ID, mid.ID}, []string{got[0].ID, got[1].ID, got[2].ID})
	})
}

func TestUpdateFolder(t *testing.T) {
	s := newTestServer(t)
	cs := s.createFolder(t, "u1", "CS101", nil)
	mid := s.createFolder(t, "u1", "Midterm", &cs.ID)
	s.createFolder(t, "u1", "Final", &cs.ID)

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
		wantKind   string
	}{
		{name: "self parent", id: cs.ID, body: `{"parent_id":"` + cs.ID + `"}`, wantStatus: http.StatusBadRequest, wantKind: "self_parent"},
		{name: "cycle", id: cs.ID, body: `{"parent_id":"` + mid.ID + `"}`, wantStatus: http.StatusBadRequest, wantKind: "cycle_detected"},
		{name: "rename clash", id: mid.ID, body: `{"name":"final"}`, wantStatus: http.StatusConflict, wantKind: "duplicate_name"},
		{name: "empty body", id: mid.ID, body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "unknown folder", id: "00000000-0000-0000-0000-000000000009", body: `{"name":"x"}`, wantStatus: http.StatusNotFound, wantKind: "folder_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, "u1", http.MethodPatch, "/api/folders/"+tt.id, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, decode[map[string]interface{}](t, rec)["kind"])
			}
		})
	}

	t.Run("rename and move to root with null", func(t *testing.T) {
		rec := s.do(t, "u1", http.MethodPatch, "/api/folders/"+mid.ID, `{"name":" Midterm 1 ","parent_id":null}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decode[models.Folder](t, rec)
		assert.Equal(t, "Midterm 1", got.Name)
		assert.Nil(t, got.ParentID)
	})

	t.Run("absent parent keeps placement", func(t *testing.T) {
		rec := s.do(t, "u1", http.MethodPatch, "/api/folders/"+mid.ID, `{"parent_id":"`+cs.ID+`"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(t, "u1", http.MethodPatch, "/api/folders/"+mid.ID, `{"name":"Midterm"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decode[models.Folder](t, rec)
		require.NotNil(t, got.ParentID)
		assert.Equal(t, cs.ID, *got.ParentID)
	})
}

func TestDeleteFolderCascade(t *testing.T) {
	s := newTestServer(t)
	cs := s.createFolder(t, "u1", "CS101", nil)
	mid := s.createFolder(t, "u1", "Midterm", &cs.ID)

	note := &models.Note{Title: "syllabus", FolderID: &cs.ID}
	require.NoError(t, s.store.Notes().ForOwner("u1").Create(context.Background(), note))

	rec := s.do(t, "u2", http.MethodDelete, "/api/folders/"+cs.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, "u1", http.MethodDelete, "/api/folders/"+cs.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[map[string]interface{}](t, rec)
	assert.EqualValues(t, 1, result["promoted_children"])
	assert.EqualValues(t, 1, result["cleared_notes"])

	rec = s.do(t, "u1", http.MethodGet, "/api/folders/"+mid.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[models.Folder](t, rec).ParentID)

	rec = s.do(t, "u1", http.MethodGet, "/api/notes?folderIds=uncategorized", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[[]models.Note](t, rec)
	require.Len(t, notes, 1)
	assert.Equal(t, note.ID, notes[0].ID)
}

func TestNoteRoutes(t *testing.T) {
	s := newTestServer(t)
	cs := s.createFolder(t, "u1", "CS101", nil)
	mid := s.createFolder(t, "u1", "Midterm", &cs.ID)
	other := s.createFolder(t, "u2", "Theirs", nil)

	notes := s.store.Notes().ForOwner("u1")
	ctx := context.Background()
	exam := &models.Note{Title: "exam review", FolderID: &mid.ID}
	loose := &models.Note{Title: "loose page"}
	require.NoError(t, notes.Create(ctx, exam))
	require.NoError(t, notes.Create(ctx, loose))

	list := func(t *testing.T, query string) []string {
		t.Helper()
		rec := s.do(t, "u1", http.MethodGet, "/api/notes"+query, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var out []string
		for _, n := range decode[[]models.Note](t, rec) {
			out = append(out, n.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"exam review", "loose page"}, list(t, ""))
	assert.Empty(t, list(t, "?folderIds="+cs.ID))
	assert.ElementsMatch(t, []string{"exam review"}, list(t, "?folderIds="+cs.ID+"&cascade=true"))
	assert.ElementsMatch(t, []string{"loose page"}, list(t, "?folderIds=null"))
	assert.ElementsMatch(t, []string{"exam review", "loose page"}, list(t, "?folderIds=not-a-uuid"))
	assert.ElementsMatch(t, []string{"exam review"}, list(t, "?folderId="+mid.ID))

	rec := s.do(t, "u1", http.MethodPatch, "/api/notes/"+loose.ID+"/folder", map[string]interface{}{"folder_id": cs.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, cs.ID, *decode[models.Note](t, rec).FolderID)

	rec = s.do(t, "u1", http.MethodPatch, "/api/notes/"+loose.ID+"/folder", map[string]interface{}{"folder_id": other.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "folder_not_found", decode[map[string]interface{}](t, rec)["kind"])

	rec = s.do(t, "u1", http.MethodPatch, "/api/notes/"+loose.ID+"/folder", `{"folder_id":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[models.Note](t, rec).FolderID)
}

func TestToggleSelection(t *testing.T) {
	s := newTestServer(t)
	cs := s.createFolder(t, "u1", "CS101", nil)
	mid := s.createFolder(t, "u1", "Midterm", &cs.ID)

	type result struct {
		Selection []string `json:"selection"`
		Query     struct {
			FolderIDs            []string `json:"folder_ids"`
			IncludeUncategorized bool     `json:"include_uncategorized"`
			Unfiltered           bool     `json:"unfiltered"`
		} `json:"query"`
	}

	rec := s.do(t, "u1", http.MethodPost, "/api/folders/selection/toggle", map[string]interface{}{
		"selection": []string{"uncategorized"},
		"target":    cs.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[result](t, rec)
	assert.ElementsMatch(t, []string{"uncategorized", cs.ID, mid.ID}, got.Selection)
	assert.ElementsMatch(t, []string{cs.ID, mid.ID}, got.Query.FolderIDs)
	assert.True(t, got.Query.IncludeUncategorized)

	rec = s.do(t, "u1", http.MethodPost, "/api/folders/selection/toggle", map[string]interface{}{
		"selection": got.Selection,
		"target":    mid.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[result](t, rec)
	assert.ElementsMatch(t, []string{"uncategorized", cs.ID}, got.Selection)

	rec = s.do(t, "u1", http.MethodPost, "/api/folders/selection/toggle", `{"selection":["uncategorized"],"target":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[result](t, rec)
	assert.Empty(t, got.Selection)
	assert.True(t, got.Query.Unfiltered)

	rec = s.do(t, "u2", http.MethodPost, "/api/folders/selection/toggle", map[string]interface{}{"target": cs.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
