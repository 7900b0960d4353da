package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

// CredentialStore defines the driven port for credential persistence.
// Implementations never see plaintext secrets; EncryptedSecret is stored as
// given. All finders return active credentials only.
type CredentialStore interface {
	// FindActiveByID returns the credential with the given ID, or (nil, nil)
	// when it does not exist or has been soft-deleted.
	FindActiveByID(ctx context.Context, id int64) (*model.Credential, error)

	// Save inserts the credential when ID is zero and updates it otherwise,
	// stamping the audit fields with actor. Owner is never changed by an
	// update. Returns the stored record.
	Save(ctx context.Context, cred model.Credential, actor string) (model.Credential, error)

	// FindVisibleFor returns credentials owned by email plus all shared ones.
	FindVisibleFor(ctx context.Context, email string) ([]model.Credential, error)

	// FindByVisibility returns every credential with the given visibility.
	FindByVisibility(ctx context.Context, visibility model.Visibility) ([]model.Credential, error)

	// FindOwnedBy returns credentials owned by email with the given visibility.
	FindOwnedBy(ctx context.Context, email string, visibility model.Visibility) ([]model.Credential, error)

	// FindExpiringBy returns credentials whose expiration date is on or
	// before date.
	FindExpiringBy(ctx context.Context, date time.Time) ([]model.Credential, error)

	// FindByTitleSubstringVisibleFor returns the visible set for email
	// filtered by a case-insensitive title substring.
	FindByTitleSubstringVisibleFor(ctx context.Context, text, email string) ([]model.Credential, error)
}
