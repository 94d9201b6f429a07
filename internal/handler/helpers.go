package handler

import (
	"errors"
	"net/http"

	"noteshelf/internal/domain"
	"noteshelf/internal/httputil"
)

// handleError converts domain errors to problem+json responses. Folder
// errors carry their kind so clients can branch without parsing messages.
func handleError(w http.ResponseWriter, err error) {
	status := domain.StatusCode(err)

	var folderErr *domain.FolderError
	if errors.As(err, &folderErr) {
		extras := map[string]interface{}{"kind": folderErr.Kind}
		if folderErr.FolderID != "" {
			extras["folder_id"] = folderErr.FolderID
		}
		httputil.RespondErrorWithExtras(w, status, folderErr.Message, extras)
		return
	}

	if status == http.StatusInternalServerError {
		httputil.RespondError(w, status, "internal server error")
		return
	}
	httputil.RespondError(w, status, err.Error())
}

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
