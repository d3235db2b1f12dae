package cli

import (
	"context"
	"fmt"
	"regexp"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/jsonwire"
)

const (
	toolBash  = "Bash"
	toolSkill = "Skill"
)

// handlePreToolUse blocks Bash commands matching a configured pattern.
func handlePreToolUse(event *domain.PreToolUseInput) string {
	if event.ToolName != toolBash || event.Command == "" {
		return ""
	}

	for _, pattern := range app.Config.BlockedCommands {
		re, err := regexp.Compile(pattern)
		if err != nil {
			app.Log.WithError(err).WithField("pattern", pattern).Warn("skipping invalid blocked command pattern")
			continue
		}
		if re.MatchString(event.Command) {
			reason := fmt.Sprintf("devmetrics: command matches blocked pattern %q", pattern)
			return jsonwire.BuildDecision("block", reason)
		}
	}
	return ""
}

// handlePostToolUse logs skill invocations.
func handlePostToolUse(ctx context.Context, event *domain.PostToolUseInput) error {
	if event.ToolName != toolSkill {
		return nil
	}
	if event.Skill == "" {
		app.Log.WithField("session_id", event.SessionID).Warn("skill invocation without a skill name")
		return nil
	}
	if err := app.Events.RecordSkill(ctx, app.Now(), event.Skill); err != nil {
		return fmt.Errorf("failed to record skill: %w", err)
	}
	return nil
}
