package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/agorahq/agora/cmd/db/commands"
	"github.com/agorahq/agora/internal/database"
	"github.com/agorahq/agora/internal/database/migrations"
	"github.com/agorahq/agora/internal/setup/config"
	"github.com/agorahq/agora/internal/setup/telemetry"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
)

// DBLogDir specifies where database tool log files are stored.
const DBLogDir = "logs/db_logs"

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	deps, cleanup, err := setupDependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup dependencies: %w", err)
	}
	defer cleanup()

	app := &cli.Command{
		Name:  "db",
		Usage: "Database management tool",
		Commands: slices.Concat(
			commands.MigrationCommands(deps),
			commands.UserCommands(deps),
			commands.MaintenanceCommands(deps),
		),
	}

	return app.Run(ctx, os.Args)
}

// setupDependencies loads the config and opens the database without
// applying migrations so the migrate commands stay in control.
func setupDependencies(ctx context.Context) (*commands.CLIDependencies, func(), error) {
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logManager := telemetry.NewManager(telemetry.ServiceDB, DBLogDir, &cfg.Common.Debug, false)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		logManager.Stop()
		return nil, nil, fmt.Errorf("failed to initialize loggers: %w", err)
	}

	db, err := database.NewConnection(ctx, &cfg.Common.PostgreSQL, dbLogger, false)
	if err != nil {
		logManager.Stop()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	services := database.NewService(
		db.DB(), db.Model(), nil, cfg.API.Notification.ReputationThrottle(), logger,
	)

	deps := &commands.CLIDependencies{
		Config:   cfg,
		DB:       db,
		Services: services,
		Migrator: migrate.NewMigrator(db.DB(), migrations.Migrations),
		Logger:   logger,
	}

	cleanup := func() {
		_ = db.Close()
		_ = logger.Sync()
		logManager.Stop()
	}

	return deps, cleanup, nil
}
