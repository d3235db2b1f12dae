package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/report"
)

var (
	flagWeeklyDays    int
	flagWeeklyStart   string
	flagWeeklyEnd     string
	flagWeeklyCompare bool
	flagWeeklyPrint   bool
)

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Generate the weekly report",
	Long: `Aggregates the daily records of a period into a markdown report written
to the reports directory. By default the period is the last 7 days ending
today.

Examples:
  devmetrics weekly                               # last 7 days
  devmetrics weekly --days 14 --compare           # last 14 days with trends
  devmetrics weekly --start 2025-01-06 --end 2025-01-12 --print`,
	Args: cobra.NoArgs,
	RunE: runWeekly,
}

func init() {
	rootCmd.AddCommand(weeklyCmd)
	weeklyCmd.Flags().IntVarP(&flagWeeklyDays, "days", "d", 7, "number of days ending today")
	weeklyCmd.Flags().StringVar(&flagWeeklyStart, "start", "", "first day of the period (YYYY-MM-DD)")
	weeklyCmd.Flags().StringVar(&flagWeeklyEnd, "end", "", "last day of the period (YYYY-MM-DD)")
	weeklyCmd.Flags().BoolVar(&flagWeeklyCompare, "compare", false, "compare against the preceding period of equal length")
	weeklyCmd.Flags().BoolVar(&flagWeeklyPrint, "print", false, "also print the summary to the terminal")
	weeklyCmd.MarkFlagsRequiredTogether("start", "end")
	weeklyCmd.MarkFlagsMutuallyExclusive("days", "start")
}

// weeklyPeriod resolves the reporting period from the flags.
func weeklyPeriod(now time.Time) (domain.DateRange, error) {
	if flagWeeklyStart == "" {
		if flagWeeklyDays < 1 {
			return domain.DateRange{}, fmt.Errorf("--days must be at least 1")
		}
		return domain.LastNDays(now, flagWeeklyDays), nil
	}

	start, err := domain.ParseDate(flagWeeklyStart, now.Location())
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := domain.ParseDate(flagWeeklyEnd, now.Location())
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("invalid --end: %w", err)
	}
	return domain.NewDateRange(start, end)
}

func runWeekly(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	now := app.Now()

	period, err := weeklyPeriod(now)
	if err != nil {
		return err
	}

	agg, err := app.Aggregator(ctx)
	if err != nil {
		return err
	}

	path, summary, err := agg.Generate(ctx, period, now, flagWeeklyCompare)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagWeeklyPrint {
		fmt.Fprintln(out, report.NewTerminal().Summary(summary))
	}
	fmt.Fprintf(out, "Report written to %s\n", path)
	return nil
}
