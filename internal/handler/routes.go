package handler

import "net/http"

// RegisterRoutes mounts the API on mux (Go 1.22+ method patterns).
// Literal segments win over {id}, so /api/folders/tree does not hit GetFolder.
func RegisterRoutes(mux *http.ServeMux, folders *FolderHandler, notes *NoteHandler) {
	mux.HandleFunc("GET /health", HealthCheck)

	// Folder routes
	mux.HandleFunc("GET /api/folders", folders.ListFolders)
	mux.HandleFunc("POST /api/folders", folders.CreateFolder)
	mux.HandleFunc("GET /api/folders/tree", folders.GetTree)
	mux.HandleFunc("GET /api/folders/parent-options", folders.ListParentOptions)
	mux.HandleFunc("GET /api/folders/ordered", folders.ListOrdered)
	mux.HandleFunc("POST /api/folders/selection/toggle", folders.ToggleSelection)
	mux.HandleFunc("GET /api/folders/{id}", folders.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folders.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folders.DeleteFolder)

	// Note routes
	mux.HandleFunc("GET /api/notes", notes.ListNotes)
	mux.HandleFunc("PATCH /api/notes/{id}/folder", notes.AssignFolder)
}
