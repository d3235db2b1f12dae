package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/devmetrics/internal/config"
	"github.com/emiliopalmerini/devmetrics/internal/logging"
)

var (
	flagConfigFile string
	flagDataDir    string
	flagRepoDir    string
	flagLogLevel   string
)

// app is built once per invocation by the root command.
var app *AppContext

var rootCmd = &cobra.Command{
	Use:   "devmetrics",
	Short: "Personal development metrics for Claude Code workflows",
	Long: `devmetrics records per-day development signals (commits, test coverage,
skill usage, token consumption) and turns a range of days into a weekly
report with recommendations.

Run "devmetrics collect" once a day, "devmetrics weekly" to get a report,
and wire "devmetrics hook" into your Claude Code hooks to log skill, pattern
and token events.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupApp,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the root command and releases what the command opened,
// whether it succeeded or not.
func run(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if app != nil {
		if closeErr := app.Close(ctx); err == nil {
			err = closeErr
		}
		app = nil
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file (default: global then project config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding daily records, logs and reports")
	rootCmd.PersistentFlags().StringVar(&flagRepoDir, "repo", "", "repository to read git history and coverage from")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// loadConfig reads the configuration and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfigFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if flags.Changed("repo") {
		cfg.RepoDir = flagRepoDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupApp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, closeLog, err := logging.New(cfg.LogLevel, cfg.LogDir, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	app = NewAppContext(cfg, log)
	app.closeLog = closeLog
	return nil
}
