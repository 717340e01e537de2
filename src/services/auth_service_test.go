package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welfare-committee-backend/src/repositories"
	"welfare-committee-backend/src/testutil"
	"welfare-committee-backend/src/utils"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	store := repositories.NewSQLSubmissionStore(db, "sqlite")
	require.NoError(t, store.Migrate(context.Background()))
	return NewAuthService(repositories.NewSQLAdminStore(db), utils.NewTokenBlacklist(nil),
		AuthConfig{Secret: "test-secret", TTL: time.Hour}, nil)
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)
	require.NoError(t, svc.SeedAdmin(ctx, "Admin", "s3cret", ""))

	res, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "admin", res.Username)

	claims, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"nobody", "s3cret"},
		{"", "s3cret"},
		{"admin", ""},
	} {
		_, err := svc.Login(ctx, tc.user, tc.pass)
		assert.ErrorIs(t, err, ErrInvalidCredentials, "%s/%s", tc.user, tc.pass)
	}
}

func TestAuthServiceAuthenticateRejects(t *testing.T) {
	svc := newAuthService(t)
	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, _, err := utils.GenerateJWT("other-secret", "admin", time.Hour)
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), other)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthServiceLogoutWithoutRedis(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)
	require.NoError(t, svc.SeedAdmin(ctx, "admin", "s3cret", ""))
	res, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	claims, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	assert.NoError(t, svc.Logout(ctx, claims))
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("NoUsernameIsNoop", func(t *testing.T) {
		assert.NoError(t, newAuthService(t).SeedAdmin(ctx, "", "", ""))
	})

	t.Run("HashWinsOverPassword", func(t *testing.T) {
		svc := newAuthService(t)
		hash, err := HashPassword("from-hash")
		require.NoError(t, err)
		require.NoError(t, svc.SeedAdmin(ctx, "admin", "from-plain", hash))

		_, err = svc.Login(ctx, "admin", "from-hash")
		assert.NoError(t, err)
		_, err = svc.Login(ctx, "admin", "from-plain")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("RejectsBadHash", func(t *testing.T) {
		assert.Error(t, newAuthService(t).SeedAdmin(ctx, "admin", "", "not-a-hash"))
	})

	t.Run("RequiresSomeSecret", func(t *testing.T) {
		assert.Error(t, newAuthService(t).SeedAdmin(ctx, "admin", "", ""))
	})
}
