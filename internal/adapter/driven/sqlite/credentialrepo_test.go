package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

func makeCredential(title string, owner model.User, visibility model.Visibility) model.Credential {
	return model.Credential{
		Title:           title,
		Description:     "desc for " + title,
		URL:             "https://" + title + ".example.com",
		Login:           "svc-" + title,
		EncryptedSecret: "blob-" + title,
		Visibility:      visibility,
		Owner:           owner.Ref(),
		Active:          true,
	}
}

func titles(creds []model.Credential) []string {
	out := make([]string, 0, len(creds))
	for _, c := range creds {
		out = append(out, c.Title)
	}
	return out
}

func TestCredentialRepo_SaveInsertAndFind(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "Alice", "alice@example.com", model.RoleUser)
	repo := NewCredentialRepo(db)
	repo.now = fixedNow(time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC))
	ctx := context.Background()

	c := makeCredential("vpn", alice, model.VisibilityPersonal)
	c.ExpiresOn = datePtr(2026, 10, 20)

	stored, err := repo.Save(ctx, c, alice.Email)
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.Equal(t, alice.Email, stored.Audit.CreatedBy)
	assert.Equal(t, time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC), stored.Audit.CreatedAt)

	got, err := repo.FindActiveByID(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "vpn", got.Title)
	assert.Equal(t, "desc for vpn", got.Description)
	assert.Equal(t, "https://vpn.example.com", got.URL)
	assert.Equal(t, "svc-vpn", got.Login)
	assert.Equal(t, "blob-vpn", got.EncryptedSecret)
	assert.Equal(t, model.VisibilityPersonal, got.Visibility)
	assert.Equal(t, alice.Ref(), got.Owner)
	require.NotNil(t, got.ExpiresOn)
	assert.Equal(t, *datePtr(2026, 10, 20), *got.ExpiresOn)
	assert.True(t, got.Active)
}

func TestCredentialRepo_SaveUpdateKeepsOwnerAndCreation(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "Alice", "alice@example.com", model.RoleUser)
	admin := seedUser(t, db, "Root", "root@example.com", model.RoleAdmin)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	repo.now = fixedNow(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	stored, err := repo.Save(ctx, makeCredential("db", alice, model.VisibilityPersonal), alice.Email)
	require.NoError(t, err)

	repo.now = fixedNow(time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC))
	stored.Title = "database"
	stored.Visibility = model.VisibilityShared
	stored.Owner = admin.Ref() // must be ignored
	stored.ExpiresOn = nil

	updated, err := repo.Save(ctx, stored, admin.Email)
	require.NoError(t, err)

	assert.Equal(t, stored.ID, updated.ID)
	assert.Equal(t, "database", updated.Title)
	assert.Equal(t, model.VisibilityShared, updated.Visibility)
	assert.Equal(t, alice.Ref(), updated.Owner)
	assert.Nil(t, updated.ExpiresOn)
	assert.Equal(t, alice.Email, updated.Audit.CreatedBy)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), updated.Audit.CreatedAt)
	assert.Equal(t, admin.Email, updated.Audit.UpdatedBy)
	assert.Equal(t, time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), updated.Audit.UpdatedAt)
}

func TestCredentialRepo_SaveUpdateMissing(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "Alice", "alice@example.com", model.RoleUser)
	repo := NewCredentialRepo(db)

	c := makeCredential("ghost", alice, model.VisibilityPersonal)
	c.ID = 404

	_, err := repo.Save(context.Background(), c, alice.Email)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCredentialRepo_SaveRejectsEmptySecret(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "Alice", "alice@example.com", model.RoleUser)
	repo := NewCredentialRepo(db)

	c := makeCredential("empty", alice, model.VisibilityPersonal)
	c.EncryptedSecret = ""

	_, err := repo.Save(context.Background(), c, alice.Email)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCredentialRepo_SoftDeletedIsHidden(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "Alice", "alice@example.com", model.RoleUser)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	stored, err := repo.Save(ctx, makeCredential("old", alice, model.VisibilityShared), alice.Email)
	require.NoError(t, err)

	stored.Active = false
	deleted, err := repo.Save(ctx, stored, alice.Email)
	require.NoError(t, err)
	assert.False(t, deleted.Active)

	got, err := repo.FindActiveByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	visible, err := repo.FindVisibleFor(ctx, alice.Email)
	require.NoError(t, err)
	assert.Empty(t, visible)

	// The row itself is kept.
	var count int
	require.NoError(t, db.Reader.QueryRow(`SELECT COUNT(*) FROM credentials`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCredentialRepo_Finders(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "Alice", "alice@example.com", model.RoleUser)
	bob := seedUser(t, db, "Bob", "bob@example.com", model.RoleUser)
	admin := seedUser(t, db, "Root", "root@example.com", model.RoleAdmin)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	for _, c := range []model.Credential{
		makeCredential("alice-mail", alice, model.VisibilityPersonal),
		makeCredential("bob-mail", bob, model.VisibilityPersonal),
		makeCredential("team-vpn", admin, model.VisibilityShared),
		makeCredential("admin-root", admin, model.VisibilityPersonal),
	} {
		_, err := repo.Save(ctx, c, c.Owner.Email)
		require.NoError(t, err)
	}

	visible, err := repo.FindVisibleFor(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice-mail", "team-vpn"}, titles(visible))

	shared, err := repo.FindByVisibility(ctx, model.VisibilityShared)
	require.NoError(t, err)
	assert.Equal(t, []string{"team-vpn"}, titles(shared))

	personal, err := repo.FindByVisibility(ctx, model.VisibilityPersonal)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin-root", "alice-mail", "bob-mail"}, titles(personal))

	owned, err := repo.FindOwnedBy(ctx, bob.Email, model.VisibilityPersonal)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob-mail"}, titles(owned))

	ownedShared, err := repo.FindOwnedBy(ctx, bob.Email, model.VisibilityShared)
	require.NoError(t, err)
	assert.Empty(t, ownedShared)
}

func TestCredentialRepo_FindExpiringByIsInclusive(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "Alice", "alice@example.com", model.RoleUser)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	save := func(title string, expires *time.Time, active bool) {
		c := makeCredential(title, alice, model.VisibilityPersonal)
		c.ExpiresOn = expires
		stored, err := repo.Save(ctx, c, alice.Email)
		require.NoError(t, err)
		if !active {
			stored.Active = false
			_, err = repo.Save(ctx, stored, alice.Email)
			require.NoError(t, err)
		}
	}

	save("expired", datePtr(2026, 9, 30), true)
	save("on-limit", datePtr(2026, 10, 8), true)
	save("after-limit", datePtr(2026, 10, 9), true)
	save("never", nil, true)
	save("deleted", datePtr(2026, 10, 2), false)

	// The time of day on the limit is ignored.
	limit := time.Date(2026, 10, 8, 17, 45, 0, 0, time.UTC)
	got, err := repo.FindExpiringBy(ctx, limit)
	require.NoError(t, err)
	assert.Equal(t, []string{"expired", "on-limit"}, titles(got))
}

func TestCredentialRepo_FindByTitleSubstringVisibleFor(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "Alice", "alice@example.com", model.RoleUser)
	bob := seedUser(t, db, "Bob", "bob@example.com", model.RoleUser)
	admin := seedUser(t, db, "Root", "root@example.com", model.RoleAdmin)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	for _, c := range []model.Credential{
		makeCredential("Corporate VPN", admin, model.VisibilityShared),
		makeCredential("my vpn", alice, model.VisibilityPersonal),
		makeCredential("bob vpn", bob, model.VisibilityPersonal),
		makeCredential("100% uptime", alice, model.VisibilityPersonal),
		makeCredential("1000 uptime", alice, model.VisibilityPersonal),
	} {
		_, err := repo.Save(ctx, c, c.Owner.Email)
		require.NoError(t, err)
	}

	got, err := repo.FindByTitleSubstringVisibleFor(ctx, "VPN", alice.Email)
	require.NoError(t, err)
	assert.Equal(t, []string{"Corporate VPN", "my vpn"}, titles(got))

	got, err = repo.FindByTitleSubstringVisibleFor(ctx, "0%", alice.Email)
	require.NoError(t, err)
	assert.Equal(t, []string{"100% uptime"}, titles(got))

	got, err = repo.FindByTitleSubstringVisibleFor(ctx, "nothing", alice.Email)
	require.NoError(t, err)
	assert.Empty(t, got)
}
