package repos_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/repos"
)

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := memdb(t)
	users := repos.NewUserRepo(db)
	ctx := context.Background()

	u, err := users.Create(ctx, "ann@example.com", "h", "customer")
	require.NoError(t, err)
	assert.Positive(t, u.ID)
	assert.Equal(t, "customer", u.Role)

	_, err = users.Create(ctx, "ann@example.com", "h2", "customer")
	require.Error(t, err)
	assert.True(t, apperr.IsUniqueViolation(err))
	assert.Equal(t, apperr.Conflict, apperr.KindOf(apperr.FromStorage(err, "x")))
}

func TestEnsureAdminPromotes(t *testing.T) {
	db := memdb(t)
	users := repos.NewUserRepo(db)
	ctx := context.Background()

	_, err := users.Create(ctx, "boss@example.com", "orig", "customer")
	require.NoError(t, err)
	require.NoError(t, users.EnsureAdmin(ctx, "boss@example.com", "new"))

	u, err := users.ByEmail(ctx, "boss@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
	assert.Equal(t, "orig", u.Hash)

	require.NoError(t, users.EnsureAdmin(ctx, "root@example.com", "h"))
	u, err = users.ByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
}

func TestSessionExpiry(t *testing.T) {
	db := memdb(t)
	users := repos.NewUserRepo(db)
	ctx := context.Background()
	uid := seedUser(t, db, "sam@example.com")
	now := time.Now()

	require.NoError(t, users.BindSession(ctx, "live", uid, now.Add(time.Hour)))
	require.NoError(t, users.BindSession(ctx, "stale", uid, now.Add(-time.Minute)))

	u, err := users.SessionUser(ctx, "live", now)
	require.NoError(t, err)
	assert.Equal(t, uid, u.ID)

	_, err = users.SessionUser(ctx, "stale", now)
	require.ErrorIs(t, err, sql.ErrNoRows)
	_, err = users.SessionUser(ctx, "live", now.Add(2*time.Hour))
	require.ErrorIs(t, err, sql.ErrNoRows)

	n, err := users.PurgeExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, users.UnbindSession(ctx, "live"))
	_, err = users.SessionUser(ctx, "live", now)
	require.ErrorIs(t, err, sql.ErrNoRows)
}
