package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civdef/volunteer-portal/internal/repository"
	"github.com/civdef/volunteer-portal/internal/seed"
)

func seedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load districts, departments and the bootstrap admin from YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.ReadFile(file)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			l := seed.NewLoader(repository.NewReferenceRepo(db), repository.NewUserRepo(db), a.cfg.BcryptCost, a.log)
			res, err := l.Load(ctx, f)
			if err != nil {
				return err
			}
			fmt.Printf("seeded %d districts, %d departments (admin created: %t)\n",
				res.Districts, res.Departments, res.AdminCreated)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed document")
	return cmd
}
