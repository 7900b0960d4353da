package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/domain/policy"
	"github.com/ericfisherdev/accessvault/internal/domain/port/driven"
)

// Field length limits enforced on create and update.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 255
	MaxURLLength         = 255
	MaxLoginLength       = 100
)

// CreateCredentialInput carries the fields of a new credential. Secret is
// the plaintext and is required.
type CreateCredentialInput struct {
	Title       string
	Description string
	URL         string
	Login       string
	Secret      string
	Visibility  model.Visibility
	ExpiresOn   *time.Time
}

// UpdateCredentialInput carries the replacement fields of a credential. A
// blank Secret keeps the stored ciphertext.
type UpdateCredentialInput struct {
	Title       string
	Description string
	URL         string
	Login       string
	Secret      string
	Visibility  model.Visibility
	ExpiresOn   *time.Time
}

// CredentialView is the secret-free projection returned to callers.
type CredentialView struct {
	ID          int64
	Title       string
	Description string
	URL         string
	Login       string
	Visibility  model.Visibility
	Owner       model.UserRef
	ExpiresOn   *time.Time
	Expired     bool
	NearExpiry  bool
	Audit       model.AuditInfo
}

// RevealedSecret is the result of a successful, audited reveal.
type RevealedSecret struct {
	CredentialID int64
	Title        string
	Login        string
	Secret       string
}

// VaultOption configures optional VaultService collaborators.
type VaultOption func(*VaultService)

// WithVaultLogger sets the logger. The default is slog.Default().
func WithVaultLogger(l *slog.Logger) VaultOption {
	return func(s *VaultService) { s.logger = l }
}

// WithVaultMetrics sets the metrics sink. The default discards.
func WithVaultMetrics(m Metrics) VaultOption {
	return func(s *VaultService) { s.metrics = m }
}

// VaultService orchestrates the credential lifecycle. Every operation takes
// the caller's email explicitly, resolves it through the user directory and
// authorizes the action with the policy table before touching secrets.
type VaultService struct {
	creds      driven.CredentialStore
	users      driven.UserDirectory
	audit      driven.AuditLog
	cipher     driven.SecretCipher
	clock      driven.Clock
	windowDays int
	logger     *slog.Logger
	metrics    Metrics
	newEventID func() string
}

// NewVaultService creates a new VaultService. A non-positive windowDays
// falls back to DefaultAlertWindowDays.
func NewVaultService(
	creds driven.CredentialStore,
	users driven.UserDirectory,
	audit driven.AuditLog,
	cipher driven.SecretCipher,
	clock driven.Clock,
	windowDays int,
	opts ...VaultOption,
) *VaultService {
	if windowDays <= 0 {
		windowDays = DefaultAlertWindowDays
	}
	s := &VaultService{
		creds:      creds,
		users:      users,
		audit:      audit,
		cipher:     cipher,
		clock:      clock,
		windowDays: windowDays,
		logger:     slog.Default(),
		metrics:    NopMetrics{},
		newEventID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create encrypts the secret and stores a new active credential owned by
// the caller.
func (s *VaultService) Create(ctx context.Context, in CreateCredentialInput, caller string) (CredentialView, error) {
	user, err := resolveCaller(ctx, s.users, caller)
	if err != nil {
		return CredentialView{}, err
	}

	if err := validateFields(in.Title, in.Description, in.URL, in.Login, in.Visibility); err != nil {
		return CredentialView{}, err
	}
	if strings.TrimSpace(in.Secret) == "" {
		return CredentialView{}, fmt.Errorf("%w: secret is required", model.ErrValidation)
	}

	if err := s.authorize(policy.Request{
		Action:    policy.ActionCreate,
		Role:      user.Role,
		IsOwner:   true,
		Requested: in.Visibility,
	}, user.Email, 0); err != nil {
		return CredentialView{}, err
	}

	blob, err := s.cipher.Encrypt(in.Secret)
	if err != nil {
		return CredentialView{}, fmt.Errorf("encrypt secret: %w", err)
	}

	stored, err := s.creds.Save(ctx, model.Credential{
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		URL:             strings.TrimSpace(in.URL),
		Login:           strings.TrimSpace(in.Login),
		EncryptedSecret: blob,
		Visibility:      in.Visibility,
		Owner:           user.Ref(),
		ExpiresOn:       normalizeDate(in.ExpiresOn),
		Active:          true,
	}, user.Email)
	if err != nil {
		return CredentialView{}, fmt.Errorf("save credential: %w", err)
	}

	s.logger.Info("credential created",
		"credential_id", stored.ID, "visibility", stored.Visibility, "actor", user.Email)
	return s.toView(stored), nil
}

// Update overwrites the mutable fields of an active credential. The secret
// is re-encrypted only when a non-blank one is supplied.
func (s *VaultService) Update(ctx context.Context, id int64, in UpdateCredentialInput, caller string) (CredentialView, error) {
	user, err := resolveCaller(ctx, s.users, caller)
	if err != nil {
		return CredentialView{}, err
	}

	cred, err := s.loadActive(ctx, id)
	if err != nil {
		return CredentialView{}, err
	}

	req := policy.Request{
		Action:    policy.ActionUpdate,
		Role:      user.Role,
		IsOwner:   cred.IsOwnedBy(user.Email),
		Current:   cred.Visibility,
		Requested: in.Visibility,
	}
	if err := s.authorize(req, user.Email, id); err != nil {
		return CredentialView{}, err
	}
	if in.Visibility == model.VisibilityShared && cred.Visibility != model.VisibilityShared {
		req.Action = policy.ActionPromoteToShared
		if err := s.authorize(req, user.Email, id); err != nil {
			return CredentialView{}, err
		}
	}

	if err := validateFields(in.Title, in.Description, in.URL, in.Login, in.Visibility); err != nil {
		return CredentialView{}, err
	}

	cred.Title = strings.TrimSpace(in.Title)
	cred.Description = in.Description
	cred.URL = strings.TrimSpace(in.URL)
	cred.Login = strings.TrimSpace(in.Login)
	cred.Visibility = in.Visibility
	cred.ExpiresOn = normalizeDate(in.ExpiresOn)

	if strings.TrimSpace(in.Secret) != "" {
		blob, err := s.cipher.Encrypt(in.Secret)
		if err != nil {
			return CredentialView{}, fmt.Errorf("encrypt secret: %w", err)
		}
		cred.EncryptedSecret = blob
	}

	stored, err := s.creds.Save(ctx, *cred, user.Email)
	if err != nil {
		return CredentialView{}, fmt.Errorf("save credential %d: %w", id, err)
	}

	s.logger.Info("credential updated",
		"credential_id", id, "visibility", stored.Visibility, "secret_rotated", strings.TrimSpace(in.Secret) != "", "actor", user.Email)
	return s.toView(stored), nil
}

// View returns a single credential the caller may read.
func (s *VaultService) View(ctx context.Context, id int64, caller string) (CredentialView, error) {
	user, err := resolveCaller(ctx, s.users, caller)
	if err != nil {
		return CredentialView{}, err
	}

	cred, err := s.loadActive(ctx, id)
	if err != nil {
		return CredentialView{}, err
	}

	if err := s.authorize(readRequest(policy.ActionRead, user, cred), user.Email, id); err != nil {
		return CredentialView{}, err
	}
	return s.toView(*cred), nil
}

// Reveal decrypts the secret and records an audit event before returning
// it. If the event cannot be recorded the plaintext is withheld.
func (s *VaultService) Reveal(ctx context.Context, id int64, caller string) (RevealedSecret, error) {
	user, err := resolveCaller(ctx, s.users, caller)
	if err != nil {
		return RevealedSecret{}, err
	}

	cred, err := s.loadActive(ctx, id)
	if err != nil {
		return RevealedSecret{}, err
	}

	if err := s.authorize(readRequest(policy.ActionReveal, user, cred), user.Email, id); err != nil {
		return RevealedSecret{}, err
	}

	plaintext, err := s.cipher.Decrypt(cred.EncryptedSecret)
	if err != nil {
		s.metrics.DecryptFailed()
		s.logger.Error("credential decryption failed", "credential_id", id, "actor", user.Email, "error", err)
		return RevealedSecret{}, fmt.Errorf("reveal credential %d: %w: %w", id, model.ErrDecryption, err)
	}

	event := model.AuditEvent{
		ID:           s.newEventID(),
		Actor:        user.Email,
		CredentialID: id,
		Action:       model.AuditActionReveal,
		Timestamp:    s.clock.Now(),
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.metrics.AuditFailed()
		s.logger.Error("audit record failed, secret withheld", "credential_id", id, "actor", user.Email, "error", err)
		return RevealedSecret{}, fmt.Errorf("reveal credential %d: %w: %w", id, model.ErrAuditSink, err)
	}

	s.metrics.Revealed()
	s.logger.Info("credential revealed", "credential_id", id, "actor", user.Email, "audit_id", event.ID)
	return RevealedSecret{
		CredentialID: id,
		Title:        cred.Title,
		Login:        cred.Login,
		Secret:       plaintext,
	}, nil
}

// Delete soft-deletes a credential.
func (s *VaultService) Delete(ctx context.Context, id int64, caller string) error {
	user, err := resolveCaller(ctx, s.users, caller)
	if err != nil {
		return err
	}

	cred, err := s.loadActive(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorize(policy.Request{
		Action:  policy.ActionDelete,
		Role:    user.Role,
		IsOwner: cred.IsOwnedBy(user.Email),
		Current: cred.Visibility,
	}, user.Email, id); err != nil {
		return err
	}

	cred.Active = false
	if _, err := s.creds.Save(ctx, *cred, user.Email); err != nil {
		return fmt.Errorf("delete credential %d: %w", id, err)
	}

	s.logger.Info("credential deleted", "credential_id", id, "actor", user.Email)
	return nil
}

// Search returns readable credentials whose title contains text, ignoring
// case. A blank text returns the whole visible set.
func (s *VaultService) Search(ctx context.Context, text, caller string) ([]CredentialView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.ListVisible(ctx, caller)
	}

	return s.list(ctx, caller, func(user *model.User) ([]model.Credential, error) {
		return s.creds.FindByTitleSubstringVisibleFor(ctx, text, user.Email)
	})
}

// ListVisible returns the caller's own credentials plus every shared one.
func (s *VaultService) ListVisible(ctx context.Context, caller string) ([]CredentialView, error) {
	return s.list(ctx, caller, func(user *model.User) ([]model.Credential, error) {
		return s.creds.FindVisibleFor(ctx, user.Email)
	})
}

// ListShared returns every shared credential.
func (s *VaultService) ListShared(ctx context.Context, caller string) ([]CredentialView, error) {
	return s.list(ctx, caller, func(*model.User) ([]model.Credential, error) {
		return s.creds.FindByVisibility(ctx, model.VisibilityShared)
	})
}

// ListPersonal returns the caller's own personal credentials.
func (s *VaultService) ListPersonal(ctx context.Context, caller string) ([]CredentialView, error) {
	return s.list(ctx, caller, func(user *model.User) ([]model.Credential, error) {
		return s.creds.FindOwnedBy(ctx, user.Email, model.VisibilityPersonal)
	})
}

// AuditTrail returns the reveal history of a credential. Admins only.
func (s *VaultService) AuditTrail(ctx context.Context, id int64, caller string) ([]model.AuditEvent, error) {
	user, err := resolveCaller(ctx, s.users, caller)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		s.logger.Warn("audit trail denied", "credential_id", id, "actor", user.Email)
		return nil, fmt.Errorf("audit trail for credential %d: %w: admin role required", id, model.ErrUnauthorized)
	}

	events, err := s.audit.ListByCredential(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("audit trail for credential %d: %w", id, err)
	}
	return events, nil
}

// list resolves the caller, runs fetch and drops every record the caller
// may not read.
func (s *VaultService) list(
	ctx context.Context,
	caller string,
	fetch func(*model.User) ([]model.Credential, error),
) ([]CredentialView, error) {
	user, err := resolveCaller(ctx, s.users, caller)
	if err != nil {
		return nil, err
	}

	creds, err := fetch(user)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	views := make([]CredentialView, 0, len(creds))
	for i := range creds {
		if !policy.Allowed(readRequest(policy.ActionRead, user, &creds[i])) {
			continue
		}
		views = append(views, s.toView(creds[i]))
	}
	return views, nil
}

func (s *VaultService) loadActive(ctx context.Context, id int64) (*model.Credential, error) {
	cred, err := s.creds.FindActiveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load credential %d: %w", id, err)
	}
	if cred == nil {
		return nil, fmt.Errorf("credential %d: %w", id, model.ErrNotFound)
	}
	return cred, nil
}

// authorize evaluates req and converts a denial into ErrUnauthorized.
func (s *VaultService) authorize(req policy.Request, actor string, credentialID int64) error {
	d := policy.Evaluate(req)
	if d.Allowed {
		return nil
	}

	s.metrics.Denied(req.Action)
	s.logger.Warn("credential access denied",
		"action", req.Action, "credential_id", credentialID, "actor", actor, "reason", d.Reason)
	return fmt.Errorf("%s: %w: %s", req.Action, model.ErrUnauthorized, d.Reason)
}

func (s *VaultService) toView(c model.Credential) CredentialView {
	expired, near := ExpiryFlags(c.ExpiresOn, s.clock.Today(), s.windowDays)
	return CredentialView{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		URL:         c.URL,
		Login:       c.Login,
		Visibility:  c.Visibility,
		Owner:       c.Owner,
		ExpiresOn:   c.ExpiresOn,
		Expired:     expired,
		NearExpiry:  near,
		Audit:       c.Audit,
	}
}

func readRequest(action policy.Action, user *model.User, cred *model.Credential) policy.Request {
	return policy.Request{
		Action:  action,
		Role:    user.Role,
		IsOwner: cred.IsOwnedBy(user.Email),
		Current: cred.Visibility,
	}
}

func validateFields(title, description, url, login string, visibility model.Visibility) error {
	var problems []string

	switch title = strings.TrimSpace(title); {
	case title == "":
		problems = append(problems, "title is required")
	case utf8.RuneCountInString(title) > MaxTitleLength:
		problems = append(problems, fmt.Sprintf("title exceeds %d characters", MaxTitleLength))
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		problems = append(problems, fmt.Sprintf("description exceeds %d characters", MaxDescriptionLength))
	}
	switch url = strings.TrimSpace(url); {
	case url == "":
		problems = append(problems, "url is required")
	case utf8.RuneCountInString(url) > MaxURLLength:
		problems = append(problems, fmt.Sprintf("url exceeds %d characters", MaxURLLength))
	}
	switch login = strings.TrimSpace(login); {
	case login == "":
		problems = append(problems, "login is required")
	case utf8.RuneCountInString(login) > MaxLoginLength:
		problems = append(problems, fmt.Sprintf("login exceeds %d characters", MaxLoginLength))
	}
	if !visibility.Valid() {
		problems = append(problems, "visibility must be personal or shared")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", model.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func normalizeDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	n := model.Date(*d)
	return &n
}
