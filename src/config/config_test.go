package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "APP_ENV", "NODE_ENV", "FRONTEND_URL", "MONGO_URI", "MONGODB_URI", "MONGO_DB",
		"SQLITE_PATH", "RELATIONAL_DSN", "UPLOADS_DIR", "EXPORTS_DIR", "JWT_SECRET", "JWT_TTL",
		"ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH", "REDIS_URI", "SSL_CERT_PATH",
		"SSL_KEY_PATH", "LOG_LEVEL", "MONGO_CONNECT_TIMEOUT", "MONGO_SOCKET_TIMEOUT",
		"REQUEST_TIMEOUT", "MAX_PHOTO_BYTES", "STRICT_CHILDREN_JSON",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "welfare_committee", cfg.MongoDatabase)
	assert.Equal(t, "data/welfare_committee.db", cfg.SQLitePath)
	assert.Equal(t, "uploads", cfg.UploadsDir)
	assert.Equal(t, 15*time.Second, cfg.MongoConnectTimeout)
	assert.Equal(t, 45*time.Second, cfg.MongoSocketTimeout)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxPhotoBytes)
	assert.False(t, cfg.StrictChildrenJSON)
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.GeneratedSecret)
	assert.Len(t, cfg.JWTSecret, 64)
}

func TestFromEnvLegacyMongoVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGODB_URI", "mongodb://db:27017")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
}

func TestFromEnvProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "production")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestFromEnvCollectsEveryProblem(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("STRICT_CHILDREN_JSON", "maybe")
	t.Setenv("SSL_CERT_PATH", "cert.pem")

	_, err := FromEnv()
	require.Error(t, err)
	for _, want := range []string{"PORT", "REQUEST_TIMEOUT", "STRICT_CHILDREN_JSON", "SSL_KEY_PATH"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestTLSEnabledOnlyOutsideProduction(t *testing.T) {
	cfg := &Config{Env: "development", SSLCertPath: "c", SSLKeyPath: "k"}
	assert.True(t, cfg.TLSEnabled())

	cfg.Env = "production"
	assert.False(t, cfg.TLSEnabled())
}
