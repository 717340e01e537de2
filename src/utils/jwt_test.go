package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseJWT(t *testing.T) {
	token, claims, err := GenerateJWT(testSecret, "admin", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseJWT(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", parsed.Username)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.InDelta(t, time.Hour.Seconds(), parsed.RemainingTTL().Seconds(), 5)
}

func TestParseJWTRejects(t *testing.T) {
	token, _, err := GenerateJWT(testSecret, "admin", time.Hour)
	require.NoError(t, err)

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := ParseJWT("other", token)
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := ParseJWT(testSecret, "")
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		expired, _, err := GenerateJWT(testSecret, "admin", -time.Minute)
		require.NoError(t, err)
		_, err = ParseJWT(testSecret, expired)
		assert.Error(t, err)
	})

	t.Run("WrongRole", func(t *testing.T) {
		claims := JWTClaims{
			Username: "someone",
			Role:     "student",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = ParseJWT(testSecret, signed)
		assert.Error(t, err)
	})

	t.Run("NoneAlgorithm", func(t *testing.T) {
		claims := JWTClaims{
			Username: "admin",
			Role:     adminRole,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ParseJWT(testSecret, signed)
		assert.Error(t, err)
	})
}

func TestGenerateJWTRequiresSecret(t *testing.T) {
	_, _, err := GenerateJWT("", "admin", time.Hour)
	assert.Error(t, err)
}

func TestRemainingTTL(t *testing.T) {
	assert.Zero(t, (&JWTClaims{}).RemainingTTL())

	past := &JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	assert.Zero(t, past.RemainingTTL())
}
