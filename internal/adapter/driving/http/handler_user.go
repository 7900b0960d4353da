package httphandler

import (
	"net/http"
)

// ListUsers returns every active user. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListActive(r.Context(), callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "list users", err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetUser returns one active user. Admin only.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := h.users.Get(r.Context(), id, callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
