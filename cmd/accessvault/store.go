package main

import (
	"context"
	"fmt"
	"log/slog"

	sqliteadapter "github.com/ericfisherdev/accessvault/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/accessvault/internal/application"
	"github.com/ericfisherdev/accessvault/internal/config"
	"github.com/ericfisherdev/accessvault/internal/userfile"
)

// seedActor is recorded as created_by/updated_by for users loaded from a file.
const seedActor = "accessvault-seed"

// openStore opens the database and brings the schema up to date.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sqliteadapter.DB, error) {
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("database opened", "path", cfg.DBPath)

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("migrations complete")
	return db, nil
}

func closeStore(db *sqliteadapter.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}

// importUserFile upserts every user listed in path.
func importUserFile(ctx context.Context, users *sqliteadapter.UserRepo, path, actor string) (int, error) {
	list, err := userfile.Load(path)
	if err != nil {
		return 0, err
	}
	n, err := application.ImportUsers(ctx, users, list, actor)
	if err != nil {
		return n, fmt.Errorf("import users from %s: %w", path, err)
	}
	return n, nil
}
