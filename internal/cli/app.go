package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emiliopalmerini/devmetrics/internal/adapters/coverage"
	"github.com/emiliopalmerini/devmetrics/internal/adapters/eventlog"
	"github.com/emiliopalmerini/devmetrics/internal/adapters/filestore"
	"github.com/emiliopalmerini/devmetrics/internal/adapters/git"
	"github.com/emiliopalmerini/devmetrics/internal/adapters/otel"
	"github.com/emiliopalmerini/devmetrics/internal/adapters/turso"
	"github.com/emiliopalmerini/devmetrics/internal/aggregator"
	"github.com/emiliopalmerini/devmetrics/internal/collector"
	"github.com/emiliopalmerini/devmetrics/internal/config"
	"github.com/emiliopalmerini/devmetrics/internal/migrate"
	"github.com/emiliopalmerini/devmetrics/internal/ports"
)

// nowFunc is the clock handed to new app contexts.
var nowFunc = time.Now

// AppContext holds the configuration and the lazily opened dependencies
// shared by the commands of one invocation.
type AppContext struct {
	Config *config.Config
	Log    *logrus.Logger
	Events *eventlog.Log
	Now    func() time.Time

	store    ports.RecordStore
	db       *sql.DB
	exporter ports.MetricsExporter
	closeLog func() error
}

func NewAppContext(cfg *config.Config, log *logrus.Logger) *AppContext {
	return &AppContext{
		Config: cfg,
		Log:    log,
		Events: eventlog.New(cfg.EventLogDir()),
		Now:    nowFunc,
	}
}

// RecordStore opens the configured backend on first use. The libsql
// backend is migrated to the latest schema when opened.
func (a *AppContext) RecordStore(ctx context.Context) (ports.RecordStore, error) {
	if a.store != nil {
		return a.store, nil
	}

	switch a.Config.StoreBackend {
	case config.BackendLibsql:
		db, err := turso.Open(a.Config.DatabaseURL, a.Config.AuthToken)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if _, err := migrate.New(db, a.Log).Up(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		a.db = db
		a.store = turso.NewRecordStore(db)
	default:
		store, err := filestore.NewRecordStore(a.Config.DataDir)
		if err != nil {
			return nil, err
		}
		a.store = store
	}
	return a.store, nil
}

// Reports returns the writer for generated reports.
func (a *AppContext) Reports() (ports.ReportWriter, error) {
	return filestore.NewReportStore(a.Config.ReportDir())
}

// Exporter returns the OTLP exporter when enabled. A failure to start it
// degrades to a no-op exporter with a warning.
func (a *AppContext) Exporter(ctx context.Context) ports.MetricsExporter {
	if a.exporter != nil {
		return a.exporter
	}
	a.exporter = otel.NewNoOpExporter()
	if !a.Config.Otel.Active() {
		return a.exporter
	}

	exp, err := otel.NewExporter(ctx, a.Config.Otel)
	if err != nil {
		a.Log.WithError(err).Warn("failed to start OTEL exporter, metrics will not be exported")
		return a.exporter
	}
	a.exporter = exp
	return a.exporter
}

// Collector wires the daily collector to the configured sources.
func (a *AppContext) Collector(ctx context.Context) (*collector.Collector, error) {
	store, err := a.RecordStore(ctx)
	if err != nil {
		return nil, err
	}
	sources := collector.Sources{
		VCS:      git.NewRepoSource(a.Config.RepoDir),
		Coverage: coverage.NewReader(a.Config.RepoDir),
		Skills:   a.Events,
		Patterns: a.Events,
		Tokens:   a.Events,
	}
	return collector.New(store, sources, a.Exporter(ctx), a.Log), nil
}

// Aggregator wires the weekly aggregator to the store and report writer.
func (a *AppContext) Aggregator(ctx context.Context) (*aggregator.Aggregator, error) {
	store, err := a.RecordStore(ctx)
	if err != nil {
		return nil, err
	}
	reports, err := a.Reports()
	if err != nil {
		return nil, err
	}
	opts := aggregator.Options{
		SkillCap:   a.Config.SkillCap,
		Thresholds: a.Config.Thresholds,
	}
	return aggregator.New(store, reports, opts, a.Log), nil
}

// Close releases everything opened during the run.
func (a *AppContext) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var errs []error
	if a.exporter != nil {
		if err := a.exporter.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush metrics: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.closeLog != nil {
		if err := a.closeLog(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
