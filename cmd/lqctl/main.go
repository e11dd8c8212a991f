package main

import (
	"os"

	"github.com/lifequest/lifequest/cmd/lqctl/cmd"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lqctl",
		Short: "Operator tools for LifeQuest",
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.LevelsCmd())
	rootCmd.AddCommand(cmd.SeedDemoCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
