package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/domain/port/driven"
)

// ImportUsers upserts users into the directory keyed by email and returns
// how many were written. It stops at the first failure.
func ImportUsers(ctx context.Context, store driven.UserStore, users []model.User, actor string) (int, error) {
	seen := make(map[string]struct{}, len(users))

	for i, u := range users {
		u.Email = normalizeEmail(u.Email)
		if u.Email == "" {
			return i, fmt.Errorf("user %d: %w: email is required", i+1, model.ErrValidation)
		}
		if _, dup := seen[u.Email]; dup {
			return i, fmt.Errorf("user %d: %w: duplicate email %s", i+1, model.ErrValidation, u.Email)
		}
		seen[u.Email] = struct{}{}

		if u.Role == "" {
			u.Role = model.RoleUser
		}
		if !u.Role.Valid() {
			return i, fmt.Errorf("user %s: %w: unknown role %q", u.Email, model.ErrValidation, u.Role)
		}

		if _, err := store.Upsert(ctx, u, actor); err != nil {
			return i, fmt.Errorf("import user %s: %w", u.Email, err)
		}
	}

	slog.Info("users imported", "count", len(users), "actor", actor)
	return len(users), nil
}
