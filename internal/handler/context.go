package handler

import (
	"net/http"

	"noteshelf/internal/httputil"
)

// requireOwner returns the authenticated owner id, writing a 401 when the
// request carries none.
func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID := httputil.GetUserID(r)
	if ownerID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return "", false
	}
	return ownerID, true
}

// requirePathID returns the {id} path value, writing a 400 when it is empty
func requirePathID(w http.ResponseWriter, r *http.Request, resource string) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, resource+" ID is required")
		return "", false
	}
	return id, true
}
