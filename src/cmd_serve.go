package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"welfare-committee-backend/src/database"
	"welfare-committee-backend/src/routes"
	"welfare-committee-backend/src/services"
	"welfare-committee-backend/src/services/submission"
	"welfare-committee-backend/src/services/uploads"
	"welfare-committee-backend/src/utils"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeBackend(backend)

	photos, err := uploads.NewPhotoStore(cfg.UploadsDir, cfg.MaxPhotoBytes)
	if err != nil {
		return err
	}
	if cfg.ExportsDir != "" {
		if err := os.MkdirAll(cfg.ExportsDir, 0o755); err != nil {
			return fmt.Errorf("create exports directory: %w", err)
		}
	}

	redisClient := connectRedis(ctx)
	if redisClient != nil {
		defer redisClient.Close()
	}

	if cfg.GeneratedSecret {
		logger.Warn("JWT_SECRET not set, using a random secret: admin sessions end on restart")
	}
	auth := services.NewAuthService(backend.Admins, utils.NewTokenBlacklist(redisClient),
		services.AuthConfig{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL}, logger)
	if err := auth.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash); err != nil {
		return err
	}
	if cfg.AdminUsername == "" {
		logger.Warn("ADMIN_USERNAME not set, no admin account was seeded")
	}

	svc := submission.NewSubmissionService(backend.Submissions, photos, submission.Options{
		StrictChildrenJSON: cfg.StrictChildrenJSON,
		Logger:             logger,
	})

	app := routes.NewApp(routes.Deps{
		Submissions:    svc,
		Auth:           auth,
		Logger:         logger,
		UploadsDir:     cfg.UploadsDir,
		ExportsDir:     cfg.ExportsDir,
		FrontendURL:    cfg.FrontendURL,
		Production:     cfg.IsProduction(),
		BodyLimit:      cfg.BodyLimit(),
		RequestTimeout: cfg.RequestTimeout,
	})

	listenErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("Server is running",
			zap.String("addr", addr),
			zap.Bool("tls", cfg.TLSEnabled()),
			zap.String("backend", backend.Name()))
		if cfg.TLSEnabled() {
			listenErr <- app.ListenTLS(addr, cfg.SSLCertPath, cfg.SSLKeyPath)
			return
		}
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	return nil
}

// connectRedis returns nil when revocation is not configured or Redis is
// down; logout then only discards the token client-side.
func connectRedis(ctx context.Context) *redis.Client {
	if cfg.RedisURI == "" {
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := database.ConnectRedis(pingCtx, cfg.RedisURI)
	if err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", zap.Error(err))
		return nil
	}
	return client
}

func closeBackend(backend *database.Backend) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := backend.Close(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("Closing storage failed", zap.Error(err))
	}
}
