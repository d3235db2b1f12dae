package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emiliopalmerini/devmetrics/internal/adapters/eventlog"
	"github.com/emiliopalmerini/devmetrics/internal/aggregator"
	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/jsonwire"
	"github.com/emiliopalmerini/devmetrics/internal/parser"
	"github.com/emiliopalmerini/devmetrics/internal/util"
)

// contextDays is the window summarized into a new session's context.
const contextDays = 7

// handleSessionStart injects a one-line summary of the recent days. No
// tracked days means no output.
func handleSessionStart(ctx context.Context, event *domain.SessionStartInput) (string, error) {
	store, err := app.RecordStore(ctx)
	if err != nil {
		return "", err
	}

	now := app.Now()
	agg := aggregator.New(store, nil, aggregator.Options{
		SkillCap:   app.Config.SkillCap,
		Thresholds: app.Config.Thresholds,
	}, app.Log)

	summary, err := agg.Summarize(ctx, domain.LastNDays(now, contextDays), now, false)
	if err != nil {
		return "", err
	}
	if summary.DaysCount == 0 {
		return "", nil
	}
	return jsonwire.BuildContext(sessionSummaryLine(summary), domain.EventSessionStart), nil
}

func sessionSummaryLine(s *domain.WeeklySummary) string {
	line := fmt.Sprintf("devmetrics, last %d days (%d tracked): %d commits, %d features, %s avg coverage, %s tokens/day, %d distinct skills.",
		s.Period.Len(), s.DaysCount, s.Totals.Commits, s.Totals.FeaturesCompleted,
		util.FormatPercent(s.Averages.TestCoverage), util.FormatTokens(s.Averages.TokensUsed), len(s.Skills))
	if len(s.Recommendations) > 0 {
		line += " " + s.Recommendations[0]
	}
	return line
}

// handleSessionEnd logs the session's token usage and the skills found in
// its transcript.
func handleSessionEnd(ctx context.Context, event *domain.SessionEndInput) error {
	if event.TranscriptPath == "" {
		app.Log.WithField("session_id", event.SessionID).Warn("session end without transcript path")
		return nil
	}

	transcript, err := parser.ParseTranscript(event.TranscriptPath)
	if err != nil {
		return fmt.Errorf("failed to parse transcript: %w", err)
	}

	now := app.Now()
	if err := app.Events.RecordTokens(ctx, now, transcript.Usage.Total(), eventlog.EventSessionEnd); err != nil {
		return fmt.Errorf("failed to record token usage: %w", err)
	}
	for _, skill := range transcript.Skills {
		if err := app.Events.RecordSkill(ctx, now, skill); err != nil {
			return fmt.Errorf("failed to record skill: %w", err)
		}
	}

	app.Log.WithFields(logrus.Fields{
		"session_id": event.SessionID,
		"tokens":     transcript.Usage.Total(),
		"skills":     len(transcript.Skills),
	}).Debug("session recorded")
	return nil
}
