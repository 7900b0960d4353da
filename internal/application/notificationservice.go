package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/domain/port/driven"
)

// ScanTrigger starts an expiration scan on demand.
type ScanTrigger interface {
	TriggerScan(ctx context.Context) (ScanResult, error)
}

// NotificationService exposes the notification log to callers. Any known
// user may list; only admins may remove, clear or trigger a scan.
type NotificationService struct {
	users   driven.UserDirectory
	store   driven.NotificationStore
	trigger ScanTrigger
	logger  *slog.Logger
}

// NewNotificationService creates a new NotificationService. A nil logger
// uses slog.Default().
func NewNotificationService(
	users driven.UserDirectory,
	store driven.NotificationStore,
	trigger ScanTrigger,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{users: users, store: store, trigger: trigger, logger: logger}
}

// List returns every notification, newest first.
func (s *NotificationService) List(ctx context.Context, caller string) ([]model.Notification, error) {
	if _, err := resolveCaller(ctx, s.users, caller); err != nil {
		return nil, err
	}
	return s.store.ListAll(), nil
}

// Remove deletes one notification.
func (s *NotificationService) Remove(ctx context.Context, id int64, caller string) error {
	user, err := s.requireAdmin(ctx, caller, "remove notification")
	if err != nil {
		return err
	}
	if !s.store.RemoveByID(id) {
		return fmt.Errorf("notification %d: %w", id, model.ErrNotFound)
	}
	s.logger.Info("notification removed", "notification_id", id, "actor", user.Email)
	return nil
}

// Clear deletes every notification.
func (s *NotificationService) Clear(ctx context.Context, caller string) error {
	user, err := s.requireAdmin(ctx, caller, "clear notifications")
	if err != nil {
		return err
	}
	s.store.ClearAll()
	s.logger.Info("notifications cleared", "actor", user.Email)
	return nil
}

// TriggerScan runs an expiration scan now and returns its result.
func (s *NotificationService) TriggerScan(ctx context.Context, caller string) (ScanResult, error) {
	user, err := s.requireAdmin(ctx, caller, "trigger scan")
	if err != nil {
		return ScanResult{}, err
	}
	s.logger.Info("manual expiration scan requested", "actor", user.Email)
	return s.trigger.TriggerScan(ctx)
}

func (s *NotificationService) requireAdmin(ctx context.Context, caller, op string) (*model.User, error) {
	user, err := resolveCaller(ctx, s.users, caller)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		s.logger.Warn("notification access denied", "operation", op, "actor", user.Email)
		return nil, fmt.Errorf("%s: %w: admin role required", op, model.ErrUnauthorized)
	}
	return user, nil
}
