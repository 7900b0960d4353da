package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/domain/port/driven"
)

// normalizeEmail trims and lowercases an identity so lookups and ownership
// checks agree regardless of how the caller spelled it.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// resolveCaller maps the caller's email to an active user. Unknown and
// inactive callers are both reported as not found.
func resolveCaller(ctx context.Context, users driven.UserDirectory, caller string) (*model.User, error) {
	email := normalizeEmail(caller)
	if email == "" {
		return nil, fmt.Errorf("resolve caller: %w: empty identity", model.ErrNotFound)
	}

	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve caller %s: %w", email, err)
	}
	if user == nil || !user.Active {
		return nil, fmt.Errorf("resolve caller %s: %w", email, model.ErrNotFound)
	}
	return user, nil
}
