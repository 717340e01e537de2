package database

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"welfare-committee-backend/src/config"
	"welfare-committee-backend/src/repositories"
)

// Backend is the storage selected once at startup. It owns the
// connection and must be closed on shutdown.
type Backend struct {
	Submissions repositories.SubmissionStore
	Admins      repositories.AdminStore
}

func (b *Backend) Name() string {
	return b.Submissions.Name()
}

func (b *Backend) Close(ctx context.Context) error {
	return b.Submissions.Close(ctx)
}

// Open prefers the document store. When MONGO_URI is unset or the store
// cannot be reached in time it falls back to the relational backend.
// The choice is never revisited while the process runs.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Backend, error) {
	if cfg.MongoURI != "" {
		backend, err := OpenMongo(ctx, cfg)
		if err == nil {
			log.Info("Using document store", zap.String("database", cfg.MongoDatabase))
			return backend, nil
		}
		log.Warn("Document store unavailable, falling back to relational backend", zap.Error(err))
	}

	backend, err := OpenRelationalBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("Using relational backend", zap.String("driver", backend.Name()))
	return backend, nil
}

func OpenMongo(ctx context.Context, cfg *config.Config) (*Backend, error) {
	client, err := ConnectMongoDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrStorageUnavailable, err)
	}
	db := client.Database(cfg.MongoDatabase)

	submissions := repositories.NewMongoSubmissionStore(db)
	admins := repositories.NewMongoAdminStore(db)
	if err := errors.Join(submissions.EnsureIndexes(ctx), admins.EnsureIndexes(ctx)); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &Backend{Submissions: submissions, Admins: admins}, nil
}

func OpenRelationalBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Backend, error) {
	db, name, err := OpenRelational(cfg, log)
	if err != nil {
		return nil, err
	}
	submissions := repositories.NewSQLSubmissionStore(db, name)
	if err := submissions.Migrate(ctx); err != nil {
		_ = submissions.Close(context.Background())
		return nil, fmt.Errorf("migrate %s schema: %w", name, err)
	}
	return &Backend{Submissions: submissions, Admins: repositories.NewSQLAdminStore(db)}, nil
}
