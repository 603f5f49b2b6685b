package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/GoArmGo/geeklib/internal/app"
	"github.com/GoArmGo/geeklib/internal/config"
	"github.com/GoArmGo/geeklib/internal/database/client"
	"github.com/GoArmGo/geeklib/internal/di"
	"github.com/spf13/cobra"
)

func main() {
	// bootstrap-логгер (используется только на этапе инициализации т.к еще не создан slogger)
	bootstrapLogger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)

	if err := newRootCmd(bootstrapLogger).ExecuteContext(context.Background()); err != nil {
		bootstrapLogger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd(bootstrapLogger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "geeklib",
		Short:         "Library lending HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRunCmd(app.ModeServer, "Serve the HTTP API", bootstrapLogger),
		newRunCmd(app.ModeWorker, "Consume library events and archive them", bootstrapLogger),
		newMigrateCmd(bootstrapLogger),
	)
	return root
}

func newRunCmd(mode, short string, bootstrapLogger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   mode,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootstrapLogger.Info("starting application", "mode", mode)

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			slogger := di.NewLogger(cfg)

			application, err := di.BuildApp(cmd.Context(), cfg, slogger)
			if err != nil {
				return err
			}

			if err := application.Run(cmd.Context(), mode); err != nil {
				slogger.Error("application run failed", "error", err)
				return err
			}

			slogger.Info("application stopped gracefully")
			return nil
		},
	}
}

func newMigrateCmd(bootstrapLogger *slog.Logger) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigration(bootstrapLogger, (*client.Client).MigrateUp)
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigration(bootstrapLogger, func(c *client.Client) error {
				return c.MigrateDown(steps)
			})
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(upCmd, downCmd)
	return migrateCmd
}

// runMigration открывает базу только для миграций, без очередей и хранилища.
func runMigration(bootstrapLogger *slog.Logger, apply func(*client.Client) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	slogger := di.NewLogger(cfg)

	db, err := di.BuildDatabase(cfg, slogger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := apply(db); err != nil {
		return err
	}
	bootstrapLogger.Info("migrations finished", "database", cfg.Database.Name)
	return nil
}
