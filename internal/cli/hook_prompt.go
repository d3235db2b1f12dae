package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/emiliopalmerini/devmetrics/internal/adapters/eventlog"
	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/jsonwire"
)

// matchPatterns returns the configured keywords the prompt mentions,
// case-insensitively, each at most once.
func matchPatterns(prompt string, patterns []string) []string {
	lower := strings.ToLower(prompt)
	seen := make(map[string]bool)
	var matched []string
	for _, p := range patterns {
		key := strings.ToLower(strings.TrimSpace(p))
		if key == "" || seen[key] {
			continue
		}
		if strings.Contains(lower, key) {
			seen[key] = true
			matched = append(matched, p)
		}
	}
	return matched
}

// handleUserPromptSubmit logs every matched pattern and echoes them back
// as additional context.
func handleUserPromptSubmit(ctx context.Context, event *domain.UserPromptSubmitInput) (string, error) {
	matched := matchPatterns(event.Prompt, app.Config.Patterns)
	if len(matched) == 0 {
		return "", nil
	}

	now := app.Now()
	for _, p := range matched {
		if err := app.Events.RecordPattern(ctx, now, p); err != nil {
			return "", fmt.Errorf("failed to record pattern: %w", err)
		}
	}
	text := "Matched patterns: " + strings.Join(matched, ", ")
	return jsonwire.BuildContext(text, domain.EventUserPromptSubmit), nil
}

// handlePreCompact logs a compaction.
func handlePreCompact(ctx context.Context, event *domain.PreCompactInput) error {
	if err := app.Events.RecordTokens(ctx, app.Now(), 0, eventlog.EventCompaction); err != nil {
		return fmt.Errorf("failed to record compaction: %w", err)
	}
	return nil
}
