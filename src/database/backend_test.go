package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"welfare-committee-backend/src/config"
	"welfare-committee-backend/src/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		MongoDatabase:       "welfare_committee_test",
		MongoConnectTimeout: 300 * time.Millisecond,
		MongoSocketTimeout:  time.Second,
		SQLitePath:          filepath.Join(t.TempDir(), "nested", "welfare.db"),
	}
}

func TestOpenWithoutMongoUsesSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	backend, err := Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close(context.Background()) })

	assert.Equal(t, "sqlite", backend.Name())
	assert.FileExists(t, cfg.SQLitePath)

	sub := &models.Submission{SubmissionFields: models.SubmissionFields{Name: "Asha Rao", Gender: models.Female}}
	sub.SetChildren([]models.Child{{Name: "Kid", DOB: "2015-01-01", Gender: models.Male}})
	id, err := backend.Submissions.CreateOrUpdate(ctx, sub)
	require.NoError(t, err)

	got, err := backend.Submissions.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Children, 1)

	require.NoError(t, backend.Admins.Upsert(ctx, &models.Admin{Username: "admin", PasswordHash: "x"}))
}

func TestOpenFallsBackWhenMongoUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.MongoURI = "mongodb://127.0.0.1:1/?directConnection=true"

	start := time.Now()
	backend, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close(context.Background()) })

	assert.Equal(t, "sqlite", backend.Name())
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestConnectMongoDBRequiresURI(t *testing.T) {
	_, err := ConnectMongoDB(context.Background(), testConfig(t))
	assert.Error(t, err)
}

func TestConnectRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := ConnectRedis(ctx, "127.0.0.1:1")
	assert.Error(t, err)

	_, err = ConnectRedis(ctx, "redis://127.0.0.1:1/not-a-db")
	assert.Error(t, err)
}
