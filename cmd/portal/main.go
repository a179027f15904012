// Command portal runs the civil defence volunteer portal: the HTTP API,
// schema migration, reference data seeding and the audit consumer.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civdef/volunteer-portal/internal/config"
	"github.com/civdef/volunteer-portal/internal/database"
	"github.com/civdef/volunteer-portal/internal/logging"
)

// app holds what every command needs once the root command has run.
type app struct {
	cfg config.Config
	log *zap.Logger
}

func main() {
	var envFile string
	a := &app{}

	root := &cobra.Command{
		Use:           "portal",
		Short:         "Civil defence volunteer portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Env, cfg.LogDir)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(serveCmd(a), migrateCmd(a), seedCmd(a), consumeCmd(a))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := database.Open(ctx, database.Options{
		User: a.cfg.DBUser,
		Pass: a.cfg.DBPass,
		Host: a.cfg.DBHost,
		Port: a.cfg.DBPort,
		Name: a.cfg.DBName,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
