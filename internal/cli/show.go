package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/report"
)

var flagShowJSON bool

var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the record of one day",
	Long:  `Prints the stored record for a day (YYYY-MM-DD), today by default.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&flagShowJSON, "json", false, "print the raw JSON record")
}

// dayArg parses an optional date argument, defaulting to today.
func dayArg(args []string) (string, error) {
	now := app.Now()
	if len(args) == 0 {
		return domain.FormatDate(now), nil
	}
	day, err := domain.ParseDate(args[0], now.Location())
	if err != nil {
		return "", err
	}
	return domain.FormatDate(day), nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	date, err := dayArg(args)
	if err != nil {
		return err
	}

	store, err := app.RecordStore(ctx)
	if err != nil {
		return err
	}

	record, err := store.Get(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to load record %s: %w", date, err)
	}
	if record == nil {
		return fmt.Errorf("no record for %s", date)
	}

	out := cmd.OutOrStdout()
	if flagShowJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintln(out, report.NewTerminal().Record(record))
	return nil
}
