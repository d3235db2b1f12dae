package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/devmetrics/internal/config"
	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/logging"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Handle Claude Code hook events",
	Long: `Reads one hook event as JSON from stdin, appends what it carries to the
event logs and, for some events, writes a single-line JSON response to
stdout. Configure your hooks to use "devmetrics hook" for every event:

  {
    "hooks": {
      "SessionStart":     [{"type": "command", "command": "devmetrics hook"}],
      "SessionEnd":       [{"type": "command", "command": "devmetrics hook"}],
      "PreToolUse":       [{"type": "command", "command": "devmetrics hook"}],
      "PostToolUse":      [{"type": "command", "command": "devmetrics hook"}],
      "PreCompact":       [{"type": "command", "command": "devmetrics hook"}],
      "UserPromptSubmit": [{"type": "command", "command": "devmetrics hook"}]
    }
  }

Missing or malformed input is logged and ignored; the hook never fails the
host.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: setupHookApp,
	RunE:              runHook,
}

// setupHookApp is setupApp for the hook: a configuration that fails to load
// falls back to the defaults with a warning instead of failing the host.
func setupHookApp(cmd *cobra.Command, args []string) error {
	loadErr := setupApp(cmd, args)
	if loadErr == nil {
		return nil
	}

	cfg, err := config.Default()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: hook disabled: %v: %v\n", loadErr, err)
		return nil
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}

	log, closeLog, err := logging.New(cfg.LogLevel, "", cmd.ErrOrStderr())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: hook disabled: %v\n", err)
		return nil
	}
	log.WithError(loadErr).Warn("using default configuration for hook")

	app = NewAppContext(cfg, log)
	app.closeLog = closeLog
	return nil
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	if app == nil {
		return nil
	}

	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		app.Log.WithError(err).Warn("failed to read hook input")
		return nil
	}

	event, err := domain.ParseHookEvent(input)
	if err != nil {
		app.Log.WithError(err).Warn("ignoring hook input")
		return nil
	}

	out, err := dispatchHook(cmd, event)
	if err != nil {
		app.Log.WithError(err).WithField("event", fmt.Sprintf("%T", event)).Warn("hook handler failed")
		return nil
	}
	if out != "" {
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
	return nil
}

// dispatchHook runs the handler for event and returns the line to print,
// if any.
func dispatchHook(cmd *cobra.Command, event any) (string, error) {
	ctx := cmd.Context()

	switch e := event.(type) {
	case *domain.SessionStartInput:
		return handleSessionStart(ctx, e)
	case *domain.SessionEndInput:
		return "", handleSessionEnd(ctx, e)
	case *domain.PreToolUseInput:
		return handlePreToolUse(e), nil
	case *domain.PostToolUseInput:
		return "", handlePostToolUse(ctx, e)
	case *domain.PreCompactInput:
		return "", handlePreCompact(ctx, e)
	case *domain.UserPromptSubmitInput:
		return handleUserPromptSubmit(ctx, e)
	default:
		return "", fmt.Errorf("unhandled hook event type: %T", event)
	}
}
