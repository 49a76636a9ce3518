package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

const userCols = `id, email, password_hash, role, created_at`

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) Create(ctx context.Context, email, hash, role string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`
		INSERT INTO users(email, password_hash, role, created_at)
		VALUES(?, ?, ?, ?)
		RETURNING `+userCols), email, hash, role, stamp())
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureAdmin creates the account as admin, or promotes an existing one. The stored
// password of an existing account is left alone.
func (r *UserRepo) EnsureAdmin(ctx context.Context, email, hash string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO users(email, password_hash, role, created_at)
		VALUES(?, ?, 'admin', ?)
		ON CONFLICT(email) DO UPDATE SET role = 'admin'
	`), email, hash, stamp())
	return err
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE email = ?`), email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) BindSession(ctx context.Context, token string, userID int64, expires time.Time) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO sessions(token, user_id, created_at, expires_at)
		VALUES(?, ?, ?, ?)
	`), token, userID, stamp(), formatTime(expires))
	return err
}

// SessionUser resolves an unexpired session token to its user.
func (r *UserRepo) SessionUser(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`
		SELECT u.id, u.email, u.password_hash, u.role, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = ? AND s.expires_at > ?
	`), token, formatTime(now))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM sessions WHERE token = ?`), token)
	return err
}

// PurgeExpiredSessions drops sessions whose expiry is at or before now.
func (r *UserRepo) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), formatTime(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
