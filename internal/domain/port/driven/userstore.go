package driven

import (
	"context"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

// UserDirectory resolves callers to users. Returns (nil, nil) when no user
// has the given email.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// UserStore extends UserDirectory with the writes used to seed the directory
// and the lookups behind the admin user endpoints.
type UserStore interface {
	UserDirectory

	// FindByID returns the user with the given ID, or (nil, nil) if none exists.
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// Upsert inserts the user or updates name, role and active status of the
	// user with the same email.
	Upsert(ctx context.Context, user model.User, actor string) (model.User, error)

	// ListAll returns every user ordered by email.
	ListAll(ctx context.Context) ([]model.User, error)
}
