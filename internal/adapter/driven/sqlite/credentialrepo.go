package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port
// interface. Secrets arrive already encrypted and are stored verbatim.
type CredentialRepo struct {
	db  *DB
	now func() time.Time
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db, now: time.Now}
}

const credentialSelect = `
	SELECT c.id, c.title, c.description, c.url, c.login, c.encrypted_secret,
	       c.visibility, c.expires_on, c.active,
	       c.created_by, c.created_at, c.updated_by, c.updated_at,
	       u.id, u.email, u.name
	FROM credentials c
	JOIN users u ON u.id = c.owner_id`

const credentialOrder = ` ORDER BY c.title COLLATE NOCASE, c.id`

// FindActiveByID returns the active credential with the given ID, or nil, nil
// if it does not exist or has been deleted.
func (r *CredentialRepo) FindActiveByID(ctx context.Context, id int64) (*model.Credential, error) {
	query := credentialSelect + ` WHERE c.id = ? AND c.active = 1`

	cred, err := scanCredential(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find credential %d: %w", id, err)
	}
	return &cred, nil
}

// Save inserts cred when its ID is zero and updates it otherwise. The audit
// fields are stamped with actor and the current time. Updates never change
// the owner or the creation fields.
func (r *CredentialRepo) Save(ctx context.Context, cred model.Credential, actor string) (model.Credential, error) {
	if cred.EncryptedSecret == "" {
		return model.Credential{}, fmt.Errorf("save credential: %w: encrypted secret is empty", model.ErrValidation)
	}

	now := formatTime(r.now())

	id := cred.ID
	if id == 0 {
		const query = `
			INSERT INTO credentials (
				title, description, url, login, encrypted_secret, visibility,
				owner_id, expires_on, active, created_by, created_at, updated_by, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		res, err := r.db.Writer.ExecContext(ctx, query,
			cred.Title, cred.Description, cred.URL, cred.Login, cred.EncryptedSecret,
			string(cred.Visibility), cred.Owner.ID, formatDate(cred.ExpiresOn), cred.Active,
			actor, now, actor, now,
		)
		if err != nil {
			return model.Credential{}, fmt.Errorf("insert credential %q: %w", cred.Title, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return model.Credential{}, fmt.Errorf("last insert id: %w", err)
		}
	} else {
		const query = `
			UPDATE credentials SET
				title = ?, description = ?, url = ?, login = ?, encrypted_secret = ?,
				visibility = ?, expires_on = ?, active = ?, updated_by = ?, updated_at = ?
			WHERE id = ?`

		res, err := r.db.Writer.ExecContext(ctx, query,
			cred.Title, cred.Description, cred.URL, cred.Login, cred.EncryptedSecret,
			string(cred.Visibility), formatDate(cred.ExpiresOn), cred.Active,
			actor, now, id,
		)
		if err != nil {
			return model.Credential{}, fmt.Errorf("update credential %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return model.Credential{}, fmt.Errorf("check rows affected: %w", err)
		}
		if n == 0 {
			return model.Credential{}, fmt.Errorf("update credential %d: %w", id, model.ErrNotFound)
		}
	}

	// Reload through the writer so the caller sees exactly what was stored.
	stored, err := scanCredential(r.db.Writer.QueryRowContext(ctx, credentialSelect+` WHERE c.id = ?`, id))
	if err != nil {
		return model.Credential{}, fmt.Errorf("reload credential %d: %w", id, err)
	}
	return stored, nil
}

// FindVisibleFor returns active credentials owned by email plus every active
// shared credential.
func (r *CredentialRepo) FindVisibleFor(ctx context.Context, email string) ([]model.Credential, error) {
	query := credentialSelect + `
		WHERE c.active = 1 AND (u.email = ? OR c.visibility = 'shared')` + credentialOrder

	return r.queryCredentials(ctx, "find visible credentials", query, strings.TrimSpace(email))
}

// FindByVisibility returns every active credential with the given visibility.
func (r *CredentialRepo) FindByVisibility(ctx context.Context, visibility model.Visibility) ([]model.Credential, error) {
	query := credentialSelect + ` WHERE c.active = 1 AND c.visibility = ?` + credentialOrder

	return r.queryCredentials(ctx, "find credentials by visibility", query, string(visibility))
}

// FindOwnedBy returns active credentials owned by email with the given visibility.
func (r *CredentialRepo) FindOwnedBy(ctx context.Context, email string, visibility model.Visibility) ([]model.Credential, error) {
	query := credentialSelect + ` WHERE c.active = 1 AND u.email = ? AND c.visibility = ?` + credentialOrder

	return r.queryCredentials(ctx, "find owned credentials", query, strings.TrimSpace(email), string(visibility))
}

// FindExpiringBy returns active credentials expiring on or before date,
// soonest first.
func (r *CredentialRepo) FindExpiringBy(ctx context.Context, date time.Time) ([]model.Credential, error) {
	query := credentialSelect + `
		WHERE c.active = 1 AND c.expires_on IS NOT NULL AND c.expires_on <= ?
		ORDER BY c.expires_on, c.id`

	return r.queryCredentials(ctx, "find expiring credentials", query, model.Date(date).Format(model.DateLayout))
}

// FindByTitleSubstringVisibleFor returns the visible set for email whose
// title contains text, ignoring case. Wildcards in text match literally.
func (r *CredentialRepo) FindByTitleSubstringVisibleFor(ctx context.Context, text, email string) ([]model.Credential, error) {
	query := credentialSelect + `
		WHERE c.active = 1 AND (u.email = ? OR c.visibility = 'shared')
		  AND LOWER(c.title) LIKE '%' || LOWER(?) || '%' ESCAPE '\'` + credentialOrder

	return r.queryCredentials(ctx, "search credentials", query, strings.TrimSpace(email), escapeLike(text))
}

func (r *CredentialRepo) queryCredentials(ctx context.Context, op, query string, args ...any) ([]model.Credential, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var creds []model.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

func scanCredential(s scanner) (model.Credential, error) {
	var (
		c                    model.Credential
		visibility           string
		expiresOn            sql.NullString
		createdAt, updatedAt string
	)

	err := s.Scan(
		&c.ID, &c.Title, &c.Description, &c.URL, &c.Login, &c.EncryptedSecret,
		&visibility, &expiresOn, &c.Active,
		&c.Audit.CreatedBy, &createdAt, &c.Audit.UpdatedBy, &updatedAt,
		&c.Owner.ID, &c.Owner.Email, &c.Owner.Name,
	)
	if err != nil {
		return model.Credential{}, err
	}
	c.Visibility = model.Visibility(visibility)

	if c.ExpiresOn, err = parseDate(expiresOn); err != nil {
		return model.Credential{}, err
	}
	if c.Audit.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Credential{}, fmt.Errorf("parse created_at: %w", err)
	}
	if c.Audit.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Credential{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return c, nil
}
