package httphandler

import (
	"net/http"
)

// ListNotifications returns the expiration notifications, newest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ns, err := h.notifications.List(r.Context(), callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "list notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, toNotificationResponses(ns))
}

// RemoveNotification deletes one notification. Admin only.
func (h *Handler) RemoveNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.notifications.Remove(r.Context(), id, callerFrom(r.Context())); err != nil {
		h.writeServiceError(w, r, "remove notification", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearNotifications deletes every notification. Admin only.
func (h *Handler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.Clear(r.Context(), callerFrom(r.Context())); err != nil {
		h.writeServiceError(w, r, "clear notifications", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TriggerScan runs the expiration monitor immediately. Admin only.
func (h *Handler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	result, err := h.notifications.TriggerScan(r.Context(), callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "trigger scan", err)
		return
	}
	writeJSON(w, http.StatusOK, toScanResponse(result))
}
