package ports

import (
	"context"
	"time"
)

// VCSSource answers questions about version-control history.
type VCSSource interface {
	CommitsSince(ctx context.Context, since time.Time) (int, error)
	MergesSince(ctx context.Context, since time.Time) (int, error)
	SubjectsSince(ctx context.Context, since time.Time) ([]string, error)
}

// CoverageReader returns the current test coverage percentage.
type CoverageReader interface {
	Coverage(ctx context.Context) (float64, error)
}

// SkillLog lists the skills invoked on a day.
type SkillLog interface {
	SkillsOn(ctx context.Context, day time.Time) ([]string, error)
}

// PatternLog counts pattern matches on a day.
type PatternLog interface {
	PatternsOn(ctx context.Context, day time.Time) (int, error)
}

// TokenUsage is one day of context consumption.
type TokenUsage struct {
	Tokens      int64
	Compactions int
}

// TokenLog sums token usage on a day.
type TokenLog interface {
	UsageOn(ctx context.Context, day time.Time) (TokenUsage, error)
}

// EventRecorder appends host events to the logs the collector reads.
type EventRecorder interface {
	RecordSkill(ctx context.Context, at time.Time, skill string) error
	RecordPattern(ctx context.Context, at time.Time, pattern string) error
	RecordTokens(ctx context.Context, at time.Time, tokens int64, event string) error
}
