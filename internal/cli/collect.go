package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/devmetrics/internal/report"
)

var flagCollectQuiet bool

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect today's metrics into the daily record",
	Long: `Reads today's signals (git history, test coverage, skill, pattern and
token logs) and merges them into today's record. Running it again the same
day refreshes the computed values and keeps curated ones.

A source that cannot be read is recorded as unavailable rather than
failing the run.`,
	Args: cobra.NoArgs,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().BoolVarP(&flagCollectQuiet, "quiet", "q", false, "do not print the collected record")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, err := app.Collector(ctx)
	if err != nil {
		return err
	}

	record, err := c.Collect(ctx, app.Now())
	if err != nil {
		return err
	}

	if !flagCollectQuiet {
		fmt.Fprintln(cmd.OutOrStdout(), report.NewTerminal().Record(record))
	}
	return nil
}
