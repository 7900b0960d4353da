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
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port interface.
// Emails compare case-insensitively.
type UserRepo struct {
	db  *DB
	now func() time.Time
}

// NewUserRepo creates a new UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db, now: time.Now}
}

const userColumns = `id, name, email, role, active, created_by, created_at, updated_by, updated_at`

// FindByEmail returns the user with the given email, or nil, nil if none exists.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	u, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", email, err)
	}
	return &u, nil
}

// FindByID returns the user with the given ID, or nil, nil if none exists.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	u, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &u, nil
}

// Upsert inserts the user, or updates name, role and active status when a
// user with the same email already exists.
func (r *UserRepo) Upsert(ctx context.Context, user model.User, actor string) (model.User, error) {
	const query = `
		INSERT INTO users (name, email, role, active, created_by, created_at, updated_by, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name       = excluded.name,
			role       = excluded.role,
			active     = excluded.active,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at`

	email := strings.TrimSpace(user.Email)
	if email == "" {
		return model.User{}, fmt.Errorf("upsert user: %w: email is required", model.ErrValidation)
	}
	if !user.Role.Valid() {
		return model.User{}, fmt.Errorf("upsert user %s: %w: unknown role %q", email, model.ErrValidation, user.Role)
	}

	now := formatTime(r.now())
	_, err := r.db.Writer.ExecContext(ctx, query,
		user.Name, email, string(user.Role), user.Active, actor, now, actor, now,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("upsert user %s: %w", email, err)
	}

	stored, err := r.findByEmailWriter(ctx, email)
	if err != nil {
		return model.User{}, fmt.Errorf("reload user %s: %w", email, err)
	}
	return stored, nil
}

// ListAll returns every user ordered by email.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY email`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// findByEmailWriter reads through the writer so a just-written row is visible.
func (r *UserRepo) findByEmailWriter(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.Writer.QueryRowContext(ctx, query, email))
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (model.User, error) {
	var (
		u                    model.User
		role                 string
		createdAt, updatedAt string
	)

	err := s.Scan(
		&u.ID, &u.Name, &u.Email, &role, &u.Active,
		&u.Audit.CreatedBy, &createdAt, &u.Audit.UpdatedBy, &updatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)

	if u.Audit.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.User{}, fmt.Errorf("parse created_at: %w", err)
	}
	if u.Audit.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.User{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return u, nil
}
