package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

var _ repository.UserRepository = (*UserDB)(nil)

// UserDB stores admin accounts.
type UserDB struct {
	*DB
}

// Users returns the admin account repository.
func (db *DB) Users() *UserDB { return &UserDB{db} }

const userColumns = `id, email, name, password_hash, role, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns apperror.NotFound when no user has the id.
func (db *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, db.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, classify("getting user "+id, err)
	}
	return u, nil
}

// GetByEmail matches the email exactly; callers lower-case it first.
func (db *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, db.q(`SELECT `+userColumns+` FROM users WHERE email = ?`), email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, classify("getting user by email", err)
	}
	return u, nil
}

// Upsert inserts the user or, if the email already exists, updates name, role
// and password hash. The stored ID and CreatedAt are written back into u.
func (db *UserDB) Upsert(ctx context.Context, u *model.User) error {
	ts := now()
	if u.Role == "" {
		u.Role = model.RoleAdmin
	}

	_, err := db.conn.ExecContext(ctx, db.q(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			name = excluded.name,
			password_hash = excluded.password_hash,
			role = excluded.role,
			updated_at = excluded.updated_at`),
		xid.New().String(), u.Email, u.Name, u.PasswordHash, u.Role, ts, ts,
	)
	if err != nil {
		return classify("upserting user", err)
	}

	stored, err := db.GetByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	*u = *stored
	return nil
}

// UpdatePassword replaces the stored hash.
func (db *UserDB) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := db.conn.ExecContext(ctx, db.q(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`),
		passwordHash, now(), id)
	if err != nil {
		return classify("updating password", err)
	}
	return checkAffected(res, "user", id)
}
