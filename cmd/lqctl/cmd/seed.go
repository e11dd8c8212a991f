package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lifequest/lifequest/internal/config"
	"github.com/lifequest/lifequest/internal/db"
	"github.com/lifequest/lifequest/internal/service"
	"github.com/spf13/cobra"
)

func SeedDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Create the demo account and its starter quest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				err := db.RunMigrations(database.DB, cfg.DBDriver)
				if err != nil {
					return err
				}

				user, created, err := service.SeedDemo(cmd.Context(), database, cfg.Policy())
				if err != nil {
					return err
				}

				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "created demo user %s (%s / %s)\n", user.ID, service.DemoEmail, service.DemoPassword)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "demo user already exists: %s\n", user.ID)
				}
				return nil
			})
		},
	}
}
