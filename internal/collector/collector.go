// Package collector builds and persists the DailyMetricRecord of a day.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/ports"
)

// Sources are the signal providers of a collection. A nil source is
// treated as unavailable.
type Sources struct {
	VCS      ports.VCSSource
	Coverage ports.CoverageReader
	Skills   ports.SkillLog
	Patterns ports.PatternLog
	Tokens   ports.TokenLog
}

// Collector recomputes today's record from its sources and merges it with
// the stored one. Source failures degrade the record; store failures abort.
type Collector struct {
	store    ports.RecordStore
	sources  Sources
	exporter ports.MetricsExporter
	log      logrus.FieldLogger
}

func New(store ports.RecordStore, sources Sources, exporter ports.MetricsExporter, log logrus.FieldLogger) *Collector {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Collector{store: store, sources: sources, exporter: exporter, log: log}
}

// Collect gathers the signals of now's calendar day, merges them with any
// stored record for that day and writes the result. Running it twice with
// no new activity writes the same record.
func (c *Collector) Collect(ctx context.Context, now time.Time) (*domain.DailyMetricRecord, error) {
	day := domain.Midnight(now)
	fresh := c.gather(ctx, day)

	existing, err := c.existing(ctx, fresh.Date)
	if err != nil {
		return nil, err
	}

	merged := domain.Merge(existing, fresh)
	if err := c.store.Put(ctx, merged); err != nil {
		return nil, fmt.Errorf("failed to save record %s: %w", merged.Date, err)
	}

	if c.exporter != nil {
		if err := c.exporter.ExportDaily(ctx, merged); err != nil {
			c.log.WithError(err).Warn("failed to export metrics")
		}
	}

	c.log.WithFields(logrus.Fields{
		"date":        merged.Date,
		"commits":     merged.Productivity.Commits,
		"coverage":    merged.Quality.TestCoverage,
		"tokens":      merged.Context.TokensUsed,
		"unavailable": merged.Unavailable,
	}).Info("collected daily metrics")
	return merged, nil
}

// gather reads every source. Fields of a failed source stay zero and the
// source is listed as unavailable.
func (c *Collector) gather(ctx context.Context, day time.Time) *domain.DailyMetricRecord {
	r := domain.NewDailyMetricRecord(day)
	s := c.sources

	if err := c.readVCS(ctx, day, r); err != nil {
		c.degrade(r, domain.SourceGit, err)
	}

	if s.Coverage == nil {
		c.degrade(r, domain.SourceCoverage, errNoSource)
	} else if pct, err := s.Coverage.Coverage(ctx); err != nil {
		c.degrade(r, domain.SourceCoverage, err)
	} else if pct < 0 || pct > 100 {
		c.degrade(r, domain.SourceCoverage, fmt.Errorf("coverage %.1f out of range", pct))
	} else {
		r.Quality.TestCoverage = pct
	}

	if s.Skills == nil {
		c.degrade(r, domain.SourceSkills, errNoSource)
	} else if skills, err := s.Skills.SkillsOn(ctx, day); err != nil {
		c.degrade(r, domain.SourceSkills, err)
	} else {
		r.Learning.SkillsInvoked = domain.UnionSorted(skills)
	}

	if s.Patterns == nil {
		c.degrade(r, domain.SourcePatterns, errNoSource)
	} else if n, err := s.Patterns.PatternsOn(ctx, day); err != nil {
		c.degrade(r, domain.SourcePatterns, err)
	} else {
		r.Learning.PatternsMatched = n
	}

	if s.Tokens == nil {
		c.degrade(r, domain.SourceTokens, errNoSource)
	} else if usage, err := s.Tokens.UsageOn(ctx, day); err != nil {
		c.degrade(r, domain.SourceTokens, err)
	} else {
		r.Context.TokensUsed = usage.Tokens
		r.Context.Compactions = usage.Compactions
	}

	return r
}

var errNoSource = errors.New("no source configured")

// readVCS fills productivity all at once so a partial failure leaves every
// git field at zero.
func (c *Collector) readVCS(ctx context.Context, since time.Time, r *domain.DailyMetricRecord) error {
	vcs := c.sources.VCS
	if vcs == nil {
		return errNoSource
	}

	commits, err := vcs.CommitsSince(ctx, since)
	if err != nil {
		return err
	}
	merges, err := vcs.MergesSince(ctx, since)
	if err != nil {
		return err
	}
	subjects, err := vcs.SubjectsSince(ctx, since)
	if err != nil {
		return err
	}

	r.Productivity = domain.Productivity{
		Commits:           commits,
		PRsMerged:         merges,
		FeaturesCompleted: domain.CountFeatures(subjects),
	}
	return nil
}

func (c *Collector) degrade(r *domain.DailyMetricRecord, source string, err error) {
	c.log.WithError(err).WithField("source", source).Warn("signal source unavailable, recording zero")
	r.MarkUnavailable(source)
}

// existing loads the stored record for date. A corrupt record is treated
// as absent so the day can be rebuilt.
func (c *Collector) existing(ctx context.Context, date string) (*domain.DailyMetricRecord, error) {
	r, err := c.store.Get(ctx, date)
	if errors.Is(err, ports.ErrCorruptRecord) {
		c.log.WithError(err).WithField("date", date).Warn("existing record is corrupt, rebuilding it")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", date, err)
	}
	return r, nil
}

// CurateInput carries the manually curated fields. Nil fields are left
// unchanged.
type CurateInput struct {
	ReviewScore *float64
	BugsFound   *int
}

// Curate sets the curated fields of a day, creating an empty record when
// none exists. A corrupt record is an error here since rebuilding it would
// drop collected values silently.
func (c *Collector) Curate(ctx context.Context, day time.Time, in CurateInput) (*domain.DailyMetricRecord, error) {
	if in.ReviewScore == nil && in.BugsFound == nil {
		return nil, fmt.Errorf("nothing to curate: set a review score or bug count")
	}
	if in.ReviewScore != nil && (*in.ReviewScore < 0 || *in.ReviewScore > 10) {
		return nil, fmt.Errorf("review score %.1f out of range [0, 10]", *in.ReviewScore)
	}
	if in.BugsFound != nil && *in.BugsFound < 0 {
		return nil, fmt.Errorf("bugs found must not be negative")
	}

	date := domain.FormatDate(day)
	r, err := c.store.Get(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", date, err)
	}
	if r == nil {
		r = domain.NewDailyMetricRecord(day)
	}

	if in.ReviewScore != nil {
		r.Quality.ReviewScoreAvg = *in.ReviewScore
	}
	if in.BugsFound != nil {
		r.Quality.BugsFound = *in.BugsFound
	}

	if err := c.store.Put(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to save record %s: %w", date, err)
	}
	return r, nil
}
