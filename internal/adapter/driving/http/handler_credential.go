package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/accessvault/internal/application"
	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

// CredentialRequest is the JSON body for creating or updating a credential.
// ExpiresOn is a YYYY-MM-DD date; null or "" means no expiration.
type CredentialRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Login       string  `json:"login"`
	Secret      string  `json:"secret"`
	Visibility  string  `json:"visibility"`
	ExpiresOn   *string `json:"expires_on"`
}

func (req CredentialRequest) expiresOn() (*time.Time, error) {
	if req.ExpiresOn == nil || strings.TrimSpace(*req.ExpiresOn) == "" {
		return nil, nil
	}
	d, err := model.ParseDate(strings.TrimSpace(*req.ExpiresOn))
	if err != nil {
		return nil, errors.New("expires_on must be YYYY-MM-DD")
	}
	return &d, nil
}

// decodeCredentialRequest reads and decodes the request body. On failure it
// writes a 400 and returns false.
func decodeCredentialRequest(w http.ResponseWriter, r *http.Request) (CredentialRequest, *time.Time, bool) {
	var req CredentialRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return req, nil, false
	}

	expires, err := req.expiresOn()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return req, nil, false
	}
	return req, expires, true
}

// CreateCredential stores a new credential owned by the caller.
func (h *Handler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	req, expires, ok := decodeCredentialRequest(w, r)
	if !ok {
		return
	}

	view, err := h.vault.Create(r.Context(), application.CreateCredentialInput{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Login:       req.Login,
		Secret:      req.Secret,
		Visibility:  model.Visibility(req.Visibility),
		ExpiresOn:   expires,
	}, callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "create credential", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCredentialResponse(view))
}

// UpdateCredential replaces the editable fields of a credential. An empty
// secret keeps the stored one.
func (h *Handler) UpdateCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, expires, ok := decodeCredentialRequest(w, r)
	if !ok {
		return
	}

	view, err := h.vault.Update(r.Context(), id, application.UpdateCredentialInput{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Login:       req.Login,
		Secret:      req.Secret,
		Visibility:  model.Visibility(req.Visibility),
		ExpiresOn:   expires,
	}, callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "update credential", err)
		return
	}

	writeJSON(w, http.StatusOK, toCredentialResponse(view))
}

// GetCredential returns one credential without its secret.
func (h *Handler) GetCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	view, err := h.vault.View(r.Context(), id, callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "view credential", err)
		return
	}

	writeJSON(w, http.StatusOK, toCredentialResponse(view))
}

// DeleteCredential soft-deletes a credential.
func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.vault.Delete(r.Context(), id, callerFrom(r.Context())); err != nil {
		h.writeServiceError(w, r, "delete credential", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RevealCredential decrypts and returns a secret. Every successful call is
// audited; the response is never cacheable.
func (h *Handler) RevealCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	secret, err := h.vault.Reveal(r.Context(), id, callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "reveal credential", err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	writeJSON(w, http.StatusOK, toRevealResponse(secret))
}

// AuditTrail returns the reveal history of a credential. Admin only.
func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	events, err := h.vault.AuditTrail(r.Context(), id, callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "audit trail", err)
		return
	}

	resp := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toAuditEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListVisible returns the caller's own credentials plus every shared one.
func (h *Handler) ListVisible(w http.ResponseWriter, r *http.Request) {
	views, err := h.vault.ListVisible(r.Context(), callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "list visible", err)
		return
	}
	writeJSON(w, http.StatusOK, toCredentialResponses(views))
}

// ListShared returns every shared credential.
func (h *Handler) ListShared(w http.ResponseWriter, r *http.Request) {
	views, err := h.vault.ListShared(r.Context(), callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "list shared", err)
		return
	}
	writeJSON(w, http.StatusOK, toCredentialResponses(views))
}

// ListPersonal returns the caller's personal credentials.
func (h *Handler) ListPersonal(w http.ResponseWriter, r *http.Request) {
	views, err := h.vault.ListPersonal(r.Context(), callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "list personal", err)
		return
	}
	writeJSON(w, http.StatusOK, toCredentialResponses(views))
}

// SearchCredentials matches ?title= case-insensitively against visible
// credentials.
func (h *Handler) SearchCredentials(w http.ResponseWriter, r *http.Request) {
	views, err := h.vault.Search(r.Context(), r.URL.Query().Get("title"), callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "search credentials", err)
		return
	}
	writeJSON(w, http.StatusOK, toCredentialResponses(views))
}
