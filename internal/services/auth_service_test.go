package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/domain"
	"storefront/internal/services"
	"storefront/internal/validate"
)

func TestRegisterLoginLogout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sess, err := f.auth.Register(ctx, validate.RegisterRequest{Email: "  New@Example.com ", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "new@example.com", sess.User.Email)
	assert.Equal(t, domain.RoleCustomer, sess.User.Role)

	u, err := f.auth.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, u.ID)

	_, err = f.auth.Register(ctx, validate.RegisterRequest{Email: "new@example.com", Password: "another-pass"})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	login, err := f.auth.Login(ctx, validate.LoginRequest{Email: "NEW@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.NotEqual(t, sess.Token, login.Token)

	require.NoError(t, f.auth.Logout(ctx, sess.Token))
	_, err = f.auth.CurrentUser(ctx, sess.Token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
	_, err = f.auth.CurrentUser(ctx, login.Token)
	assert.NoError(t, err)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, validate.RegisterRequest{Email: "u@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, wrongPass := f.auth.Login(ctx, validate.LoginRequest{Email: "u@example.com", Password: "battery-staple"})
	_, noUser := f.auth.Login(ctx, validate.LoginRequest{Email: "ghost@example.com", Password: "battery-staple"})
	assert.ErrorIs(t, wrongPass, services.ErrBadCreds)
	assert.ErrorIs(t, noUser, services.ErrBadCreds)

	_, err = f.auth.Login(ctx, validate.LoginRequest{Email: "u@example.com"})
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	f := setup(t)
	_, err := f.auth.Register(context.Background(), validate.RegisterRequest{Email: "not-an-email", Password: "short"})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.Invalid, ae.Kind)
	assert.Contains(t, ae.Fields, "email")
	assert.Contains(t, ae.Fields, "password")
}

func TestSessionsExpire(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	f.auth.Now = func() time.Time { return now }

	sess, err := f.auth.Register(ctx, validate.RegisterRequest{Email: "t@example.com", Password: "long-enough"})
	require.NoError(t, err)

	now = now.Add(f.auth.TTL + time.Second)
	_, err = f.auth.CurrentUser(ctx, sess.Token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	n, err := f.auth.PurgeSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.auth.CurrentUser(ctx, "")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestEnsureAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.auth.EnsureAdmin(ctx, "Ops@Example.com", "admin-pass-1"))

	sess, err := f.auth.Login(ctx, validate.LoginRequest{Email: "ops@example.com", Password: "admin-pass-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, sess.User.Role)

	assert.Error(t, f.auth.EnsureAdmin(ctx, "ops@example.com", "short"))
}
