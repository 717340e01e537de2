package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"welfare-committee-backend/src/database"
	"welfare-committee-backend/src/services/submission"
)

var migrateReverse bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy submissions from the relational store into MongoDB",
	Long: `Reads every submission (children included) from the relational store
(SQLITE_PATH, or RELATIONAL_DSN when set) and inserts it into the MongoDB
database named by MONGO_URI and MONGO_DB. Records get new ids; submission
dates and photo paths are kept.

With --reverse the copy runs from MongoDB into the relational store.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateReverse, "reverse", false, "copy from MongoDB into the relational store")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if cfg.MongoURI == "" {
		return errors.New("MONGO_URI must be set to migrate")
	}
	ctx := cmd.Context()

	relational, err := database.OpenRelationalBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer relational.Close(context.Background())

	docs, err := database.OpenMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer docs.Close(context.Background())

	src, dst := relational, docs
	if migrateReverse {
		src, dst = docs, relational
	}

	logger.Info("Starting migration", zap.String("from", src.Name()), zap.String("to", dst.Name()))
	copied, err := submission.CopyAll(ctx, src.Submissions, dst.Submissions, logger)
	if err != nil {
		return fmt.Errorf("migration stopped after %d submissions: %w", copied, err)
	}

	summary, err := dst.Submissions.Count(ctx)
	if err != nil {
		return err
	}
	logger.Info("Migration completed",
		zap.Int("copied", copied),
		zap.Int64("totalInTarget", summary.Total))
	return nil
}
