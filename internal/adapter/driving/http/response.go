package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/accessvault/internal/application"
	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error","code":"internal"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code, stable
// error code, and message.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// Stable error codes returned in the "code" field.
const (
	codeUnauthenticated  = "unauthenticated"
	codeUnauthorized     = "unauthorized"
	codeNotFound         = "not_found"
	codeValidation       = "validation_failed"
	codeBadRequest       = "bad_request"
	codeDecryption       = "decryption_failed"
	codeAuditUnavailable = "audit_unavailable"
	codeInternal         = "internal"
)

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CredentialResponse is the JSON representation of a credential. It never
// carries secret material.
type CredentialResponse struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	DescriptionHTML string  `json:"description_html"`
	URL             string  `json:"url"`
	Login           string  `json:"login"`
	Visibility      string  `json:"visibility"`
	OwnerEmail      string  `json:"owner_email"`
	OwnerName       string  `json:"owner_name"`
	ExpiresOn       *string `json:"expires_on"`
	Expired         bool    `json:"expired"`
	NearExpiry      bool    `json:"near_expiry"`
	CreatedBy       string  `json:"created_by"`
	CreatedAt       string  `json:"created_at"`
	UpdatedBy       string  `json:"updated_by"`
	UpdatedAt       string  `json:"updated_at"`
}

// RevealResponse carries a decrypted secret.
type RevealResponse struct {
	CredentialID int64  `json:"credential_id"`
	Title        string `json:"title"`
	Login        string `json:"login"`
	Secret       string `json:"secret"`
}

// AuditEventResponse is the JSON representation of an audit record.
type AuditEventResponse struct {
	ID           string `json:"id"`
	Actor        string `json:"actor"`
	CredentialID int64  `json:"credential_id"`
	Action       string `json:"action"`
	Timestamp    string `json:"timestamp"`
}

// NotificationResponse is the JSON representation of a notification.
type NotificationResponse struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// UserResponse is the JSON representation of a directory user.
type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
	UpdatedBy string `json:"updated_by"`
	UpdatedAt string `json:"updated_at"`
}

// ScanResponse summarizes a manually triggered expiration scan.
type ScanResponse struct {
	StartedAt     string                 `json:"started_at"`
	Today         string                 `json:"today"`
	Alerts        int                    `json:"alerts"`
	Criticals     int                    `json:"criticals"`
	Notifications []NotificationResponse `json:"notifications"`
}

// HealthResponse is the JSON representation of the health check.
type HealthResponse struct {
	Status   string             `json:"status"`
	Time     string             `json:"time"`
	Database string             `json:"database"`
	LastScan *ScanSummaryResult `json:"last_scan,omitempty"`
}

// ScanSummaryResult is the last-scan block of the health response.
type ScanSummaryResult struct {
	StartedAt string `json:"started_at"`
	Alerts    int    `json:"alerts"`
	Criticals int    `json:"criticals"`
	Error     string `json:"error,omitempty"`
}

func toCredentialResponse(v application.CredentialView) CredentialResponse {
	resp := CredentialResponse{
		ID:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		DescriptionHTML: RenderMarkdown(v.Description),
		URL:             v.URL,
		Login:           v.Login,
		Visibility:      string(v.Visibility),
		OwnerEmail:      v.Owner.Email,
		OwnerName:       v.Owner.Name,
		Expired:         v.Expired,
		NearExpiry:      v.NearExpiry,
		CreatedBy:       v.Audit.CreatedBy,
		CreatedAt:       formatTimestamp(v.Audit.CreatedAt),
		UpdatedBy:       v.Audit.UpdatedBy,
		UpdatedAt:       formatTimestamp(v.Audit.UpdatedAt),
	}
	if v.ExpiresOn != nil {
		d := v.ExpiresOn.Format(model.DateLayout)
		resp.ExpiresOn = &d
	}
	return resp
}

func toCredentialResponses(views []application.CredentialView) []CredentialResponse {
	resp := make([]CredentialResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toCredentialResponse(v))
	}
	return resp
}

func toRevealResponse(s application.RevealedSecret) RevealResponse {
	return RevealResponse{
		CredentialID: s.CredentialID,
		Title:        s.Title,
		Login:        s.Login,
		Secret:       s.Secret,
	}
}

func toAuditEventResponse(e model.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		ID:           e.ID,
		Actor:        e.Actor,
		CredentialID: e.CredentialID,
		Action:       string(e.Action),
		Timestamp:    formatTimestamp(e.Timestamp),
	}
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Kind:      string(n.Kind),
		Message:   n.Message,
		CreatedAt: formatTimestamp(n.CreatedAt),
	}
}

func toNotificationResponses(ns []model.Notification) []NotificationResponse {
	resp := make([]NotificationResponse, 0, len(ns))
	for _, n := range ns {
		resp = append(resp, toNotificationResponse(n))
	}
	return resp
}

func toUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedBy: u.Audit.CreatedBy,
		CreatedAt: formatTimestamp(u.Audit.CreatedAt),
		UpdatedBy: u.Audit.UpdatedBy,
		UpdatedAt: formatTimestamp(u.Audit.UpdatedAt),
	}
}

func toScanResponse(r application.ScanResult) ScanResponse {
	return ScanResponse{
		StartedAt:     formatTimestamp(r.StartedAt),
		Today:         r.Today.Format(model.DateLayout),
		Alerts:        r.Alerts,
		Criticals:     r.Criticals,
		Notifications: toNotificationResponses(r.Notifications),
	}
}

func toHealthResponse(r application.HealthReport) HealthResponse {
	resp := HealthResponse{
		Status:   "ok",
		Time:     formatTimestamp(r.Time),
		Database: r.Database,
	}
	if !r.Healthy {
		resp.Status = "degraded"
	}
	if r.LastScan != nil {
		resp.LastScan = &ScanSummaryResult{
			StartedAt: formatTimestamp(r.LastScan.StartedAt),
			Alerts:    r.LastScan.Alerts,
			Criticals: r.LastScan.Criticals,
			Error:     r.LastScan.Err,
		}
	}
	return resp
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
