package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/domain/port/driven"
)

// UserService exposes the user directory to admins.
type UserService struct {
	users  driven.UserStore
	logger *slog.Logger
}

// NewUserService creates a new UserService. A nil logger uses slog.Default().
func NewUserService(users driven.UserStore, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, logger: logger}
}

// ListActive returns every active user ordered by email.
func (s *UserService) ListActive(ctx context.Context, caller string) ([]model.User, error) {
	if _, err := s.requireAdmin(ctx, caller, "list users"); err != nil {
		return nil, err
	}

	all, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	active := make([]model.User, 0, len(all))
	for _, u := range all {
		if u.Active {
			active = append(active, u)
		}
	}
	return active, nil
}

// Get returns one active user. Inactive users are reported as not found.
func (s *UserService) Get(ctx context.Context, id int64, caller string) (model.User, error) {
	if _, err := s.requireAdmin(ctx, caller, "get user"); err != nil {
		return model.User{}, err
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.User{}, fmt.Errorf("find user %d: %w", id, err)
	}
	if u == nil || !u.Active {
		return model.User{}, fmt.Errorf("user %d: %w", id, model.ErrNotFound)
	}
	return *u, nil
}

func (s *UserService) requireAdmin(ctx context.Context, caller, op string) (*model.User, error) {
	user, err := resolveCaller(ctx, s.users, caller)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		s.logger.Warn("user directory access denied", "operation", op, "actor", user.Email)
		return nil, fmt.Errorf("%s: %w: admin role required", op, model.ErrUnauthorized)
	}
	return user, nil
}
