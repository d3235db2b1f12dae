package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/devmetrics/internal/collector"
	"github.com/emiliopalmerini/devmetrics/internal/domain"
)

var (
	flagCurateReview float64
	flagCurateBugs   int
)

var curateCmd = &cobra.Command{
	Use:   "curate [date]",
	Short: "Set the manually curated fields of a day",
	Long: `Records the review score (0-10) and bug count for a day (YYYY-MM-DD),
today by default. These values are kept by later collections.

Examples:
  devmetrics curate --review-score 8.5
  devmetrics curate 2025-01-08 --bugs 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCurate,
}

func init() {
	rootCmd.AddCommand(curateCmd)
	curateCmd.Flags().Float64Var(&flagCurateReview, "review-score", 0, "average review score (0-10)")
	curateCmd.Flags().IntVar(&flagCurateBugs, "bugs", 0, "number of bugs found")
	curateCmd.MarkFlagsOneRequired("review-score", "bugs")
}

func runCurate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	date, err := dayArg(args)
	if err != nil {
		return err
	}
	day, err := domain.ParseDate(date, app.Now().Location())
	if err != nil {
		return err
	}

	var in collector.CurateInput
	if cmd.Flags().Changed("review-score") {
		review := flagCurateReview
		in.ReviewScore = &review
	}
	if cmd.Flags().Changed("bugs") {
		bugs := flagCurateBugs
		in.BugsFound = &bugs
	}

	c, err := app.Collector(ctx)
	if err != nil {
		return err
	}

	record, err := c.Curate(ctx, day, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Curated %s: review score %.1f, bugs %d\n",
		record.Date, record.Quality.ReviewScoreAvg, record.Quality.BugsFound)
	return nil
}
