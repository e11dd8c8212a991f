package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/lifequest/lifequest/internal/config"
	"github.com/lifequest/lifequest/internal/progression"
	"github.com/spf13/cobra"
)

func LevelsCmd() *cobra.Command {
	var maxLevel int

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Print the level threshold table for the configured policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxLevel < 1 {
				return fmt.Errorf("--max must be at least 1")
			}
			cfg := config.Load()
			return printLevels(cmd.OutOrStdout(), cfg.Policy(), maxLevel)
		},
	}

	cmd.Flags().IntVar(&maxLevel, "max", 10, "highest level to print")

	return cmd
}

func printLevels(out io.Writer, policy progression.Policy, maxLevel int) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tTOTAL XP\tXP TO NEXT")
	for level := 1; level <= maxLevel; level++ {
		total := policy.Threshold(level)
		fmt.Fprintf(tw, "%d\t%d\t%d\n", level, total, policy.Threshold(level+1)-total)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\nquest finish bonus: %d XP\n", policy.FinishBonusXP)
	return err
}
