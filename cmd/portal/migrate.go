package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civdef/volunteer-portal/internal/database"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(ctx, db); err != nil {
				return err
			}
			a.log.Info("schema up to date", zap.Int("statements", len(database.Statements())))
			return nil
		},
	}
}
