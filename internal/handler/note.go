package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"noteshelf/internal/domain/services"
	"noteshelf/internal/httputil"
)

// NoteHandler serves the folder-facing note endpoints
type NoteHandler struct {
	noteService services.NoteService
	logger      *slog.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService services.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

type assignFolderBody struct {
	FolderID *string `json:"folder_id"`
}

// ListNotes lists notes filtered by folder selection
// GET /api/notes?folderIds=null,id1&cascade=true&search=
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	query := services.ListNotesQuery{
		LegacyFolderID: q.Get("folderId"),
		Search:         q.Get("search"),
	}
	if raw := q.Get("folderIds"); raw != "" {
		query.FolderIDs = strings.Split(raw, ",")
	}
	// Malformed values mean no cascade
	query.Cascade, _ = strconv.ParseBool(q.Get("cascade"))

	notes, err := h.noteService.ListNotes(r.Context(), ownerID, &query)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notes)
}

// AssignFolder moves a note into a folder, or to Uncategorized on null
// PATCH /api/notes/{id}/folder
func (h *NoteHandler) AssignFolder(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r, "Note")
	if !ok {
		return
	}

	var body assignFolderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.noteService.AssignFolder(r.Context(), ownerID, id, body.FolderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}
