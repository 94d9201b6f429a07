package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"noteshelf/internal/domain"
	"noteshelf/internal/domain/models"
	"noteshelf/internal/httputil"

	"github.com/golang-jwt/jwt/v5"
)

type stubVerifier struct {
	tokens map[string]*models.Claims
}

func (v *stubVerifier) VerifyToken(token string) (*models.Claims, error) {
	if claims, ok := v.tokens[token]; ok {
		return claims, nil
	}
	return nil, domain.ErrUnauthorized
}

func (v *stubVerifier) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthMiddleware(t *testing.T) {
	verifier := &stubVerifier{tokens: map[string]*models.Claims{
		"good": {RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}, Role: models.RoleAdmin},
	}}

	var gotUser, gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httputil.GetUserID(r)
		gotRole = httputil.GetRole(r)
		w.WriteHeader(http.StatusNoContent)
	})
	h := AuthMiddleware(verifier, discardLogger())(next)

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{name: "health is public", method: http.MethodGet, path: "/health", wantStatus: http.StatusNoContent},
		{name: "preflight passes", method: http.MethodOptions, path: "/api/folders", wantStatus: http.StatusNoContent},
		{name: "missing header", method: http.MethodGet, path: "/api/folders", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", method: http.MethodGet, path: "/api/folders", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "bad token", method: http.MethodGet, path: "/api/folders", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "good token", method: http.MethodGet, path: "/api/folders", header: "Bearer good", wantStatus: http.StatusNoContent, wantUser: "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser, gotRole = "", ""
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %q, want %q", gotUser, tt.wantUser)
			}
			if tt.wantUser != "" && gotRole != models.RoleAdmin {
				t.Errorf("role = %q, want admin", gotRole)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/folders", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, http.StatusConflict, "duplicate")
	}))

	req := httputil.WithUserID(httptest.NewRequest(http.MethodPost, "/api/folders", nil), "u1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{"request rejected", "status=409", "user_id=u1", "path=/api/folders"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}
