// Package aggregator summarizes a range of daily records into a weekly
// report.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/ports"
	"github.com/emiliopalmerini/devmetrics/internal/report"
)

// Options tune the summary. Zero values use the domain defaults.
type Options struct {
	SkillCap   int
	Thresholds domain.Thresholds
	Rules      []domain.Rule
}

// Aggregator reads records and writes reports. It never writes records.
type Aggregator struct {
	store   ports.RecordStore
	reports ports.ReportWriter
	opts    Options
	log     logrus.FieldLogger
}

func New(store ports.RecordStore, reports ports.ReportWriter, opts Options, log logrus.FieldLogger) *Aggregator {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Aggregator{store: store, reports: reports, opts: opts, log: log}
}

// Records loads every readable record in period, in date order. Missing
// days are skipped, and so are corrupt ones with a warning.
func (a *Aggregator) Records(ctx context.Context, period domain.DateRange) ([]*domain.DailyMetricRecord, error) {
	var out []*domain.DailyMetricRecord
	for _, day := range period.Days() {
		date := domain.FormatDate(day)
		r, err := a.store.Get(ctx, date)
		if errors.Is(err, ports.ErrCorruptRecord) {
			a.log.WithError(err).WithField("date", date).Warn("skipping corrupt daily record")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load record %s: %w", date, err)
		}
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// Summarize aggregates period. With compare set, the preceding period of
// the same length is summarized too and the result carries trends.
func (a *Aggregator) Summarize(ctx context.Context, period domain.DateRange, now time.Time, compare bool) (*domain.WeeklySummary, error) {
	opts := domain.AggregateOptions{
		SkillCap:   a.opts.SkillCap,
		Thresholds: a.opts.Thresholds,
		Rules:      a.opts.Rules,
		Now:        now,
	}

	if compare {
		prevPeriod := period.Previous()
		prevRecords, err := a.Records(ctx, prevPeriod)
		if err != nil {
			return nil, err
		}
		opts.Previous = domain.Aggregate(prevPeriod, prevRecords, opts)
	}

	records, err := a.Records(ctx, period)
	if err != nil {
		return nil, err
	}
	return domain.Aggregate(period, records, opts), nil
}

// Generate summarizes period, renders the markdown report and writes it as
// weekly-<generation date>.md. It returns the written path.
func (a *Aggregator) Generate(ctx context.Context, period domain.DateRange, now time.Time, compare bool) (string, *domain.WeeklySummary, error) {
	s, err := a.Summarize(ctx, period, now, compare)
	if err != nil {
		return "", nil, err
	}

	data, err := report.Markdown(s)
	if err != nil {
		return "", nil, err
	}

	path, err := a.reports.Write(ctx, report.FileName(now), data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to write weekly report: %w", err)
	}

	a.log.WithFields(logrus.Fields{
		"period": period.String(),
		"days":   s.DaysCount,
		"path":   path,
	}).Info("generated weekly report")
	return path, s, nil
}
