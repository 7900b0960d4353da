package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/accessvault/internal/application"
	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

// DefaultIdentityHeader is the request header the auth proxy fills with the
// caller's email.
const DefaultIdentityHeader = "X-Authenticated-Email"

// maxBodyBytes caps credential request bodies.
const maxBodyBytes = 64 << 10

// Vault is the credential lifecycle surface the handler drives.
type Vault interface {
	Create(ctx context.Context, in application.CreateCredentialInput, caller string) (application.CredentialView, error)
	Update(ctx context.Context, id int64, in application.UpdateCredentialInput, caller string) (application.CredentialView, error)
	View(ctx context.Context, id int64, caller string) (application.CredentialView, error)
	Reveal(ctx context.Context, id int64, caller string) (application.RevealedSecret, error)
	Delete(ctx context.Context, id int64, caller string) error
	Search(ctx context.Context, text, caller string) ([]application.CredentialView, error)
	ListVisible(ctx context.Context, caller string) ([]application.CredentialView, error)
	ListShared(ctx context.Context, caller string) ([]application.CredentialView, error)
	ListPersonal(ctx context.Context, caller string) ([]application.CredentialView, error)
	AuditTrail(ctx context.Context, id int64, caller string) ([]model.AuditEvent, error)
}

// Notifications is the notification surface the handler drives.
type Notifications interface {
	List(ctx context.Context, caller string) ([]model.Notification, error)
	Remove(ctx context.Context, id int64, caller string) error
	Clear(ctx context.Context, caller string) error
	TriggerScan(ctx context.Context, caller string) (application.ScanResult, error)
}

// Users is the admin user directory surface the handler drives.
type Users interface {
	ListActive(ctx context.Context, caller string) ([]model.User, error)
	Get(ctx context.Context, id int64, caller string) (model.User, error)
}

// HealthChecker produces the health report.
type HealthChecker interface {
	Check(ctx context.Context) application.HealthReport
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	vault          Vault
	notifications  Notifications
	users          Users
	health         HealthChecker
	identityHeader string
	logger         *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. An empty
// identityHeader selects DefaultIdentityHeader.
func NewHandler(
	vault Vault,
	notifications Notifications,
	users Users,
	health HealthChecker,
	identityHeader string,
	logger *slog.Logger,
) *Handler {
	if identityHeader == "" {
		identityHeader = DefaultIdentityHeader
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		vault:          vault,
		notifications:  notifications,
		users:          users,
		health:         health,
		identityHeader: identityHeader,
		logger:         logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with recovery, logging and metrics middleware. metrics and obs may be nil.
func NewServeMux(h *Handler, logger *slog.Logger, metrics http.Handler, obs RequestObserver) http.Handler {
	mux := http.NewServeMux()
	auth := func(fn http.HandlerFunc) http.HandlerFunc {
		return requireIdentity(h.identityHeader, fn)
	}

	mux.HandleFunc("POST /api/v1/credentials", auth(h.CreateCredential))
	mux.HandleFunc("GET /api/v1/credentials", auth(h.ListVisible))
	mux.HandleFunc("GET /api/v1/credentials/shared", auth(h.ListShared))
	mux.HandleFunc("GET /api/v1/credentials/personal", auth(h.ListPersonal))
	mux.HandleFunc("GET /api/v1/credentials/search", auth(h.SearchCredentials))
	mux.HandleFunc("GET /api/v1/credentials/{id}", auth(h.GetCredential))
	mux.HandleFunc("PUT /api/v1/credentials/{id}", auth(h.UpdateCredential))
	mux.HandleFunc("DELETE /api/v1/credentials/{id}", auth(h.DeleteCredential))
	mux.HandleFunc("POST /api/v1/credentials/{id}/reveal", auth(h.RevealCredential))
	mux.HandleFunc("GET /api/v1/credentials/{id}/audit", auth(h.AuditTrail))

	mux.HandleFunc("GET /api/v1/notifications", auth(h.ListNotifications))
	mux.HandleFunc("DELETE /api/v1/notifications", auth(h.ClearNotifications))
	mux.HandleFunc("DELETE /api/v1/notifications/{id}", auth(h.RemoveNotification))
	mux.HandleFunc("POST /api/v1/notifications/scan", auth(h.TriggerScan))

	mux.HandleFunc("GET /api/v1/users", auth(h.ListUsers))
	mux.HandleFunc("GET /api/v1/users/{id}", auth(h.GetUser))

	mux.HandleFunc("GET /api/v1/health", h.Health)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	if obs != nil {
		wrapped = metricsMiddleware(obs, wrapped)
	}

	return wrapped
}

// Health reports database reachability and the last expiration scan.
// Returns 503 when the database cannot be reached.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())
	if report.Time.IsZero() {
		report.Time = time.Now()
	}

	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, toHealthResponse(report))
}

// writeServiceError maps an application error to a status code and stable
// error code. Unexpected errors are logged and hidden behind a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, model.ErrUnauthorized):
		writeError(w, http.StatusForbidden, codeUnauthorized, "forbidden")
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	case errors.Is(err, model.ErrDecryption):
		writeError(w, http.StatusInternalServerError, codeDecryption, "stored secret could not be decrypted")
	case errors.Is(err, model.ErrAuditSink):
		writeError(w, http.StatusInternalServerError, codeAuditUnavailable, "audit log unavailable")
	default:
		h.logger.Error("request failed",
			"operation", op,
			"caller", callerFrom(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

// pathID parses the {id} path segment. On failure it writes a 400 and
// returns false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
