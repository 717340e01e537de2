package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"welfare-committee-backend/src/config"
)

// ConnectMongoDB dials the document store and pings the primary. Server
// selection and connect are bounded by MongoConnectTimeout; every later
// operation by MongoSocketTimeout.
func ConnectMongoDB(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is not set")
	}

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(cfg.MongoConnectTimeout).
		SetConnectTimeout(cfg.MongoConnectTimeout).
		SetTimeout(cfg.MongoSocketTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.MongoConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// OpenRelational opens PostgreSQL when RELATIONAL_DSN is set and the SQLite
// file at SQLITE_PATH otherwise. The returned name is "postgres" or "sqlite".
func OpenRelational(cfg *config.Config, log *zap.Logger) (*gorm.DB, string, error) {
	gormConfig := &gorm.Config{Logger: NewGormLogger(log)}

	if cfg.RelationalDSN != "" {
		db, err := gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.RelationalDSN,
			PreferSimpleProtocol: true,
		}), gormConfig)
		if err != nil {
			return nil, "", fmt.Errorf("open postgres: %w", err)
		}
		return db, "postgres", nil
	}

	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, "", fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath+"?_foreign_keys=on&_busy_timeout=5000"), gormConfig)
	if err != nil {
		return nil, "", fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
	}
	return db, "sqlite", nil
}
