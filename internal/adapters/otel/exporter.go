package otel

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/ports"
)

const (
	serviceName    = "devmetrics"
	serviceVersion = "1.0.0"
)

// Exporter pushes the values of each collected day to an OTLP collector.
// Every value is a gauge holding the latest snapshot of its day, so
// re-collecting a day replaces what the backend sees instead of adding to
// it.
type Exporter struct {
	provider    *sdkmetric.MeterProvider
	commits     metric.Int64ObservableGauge
	features    metric.Int64ObservableGauge
	prsMerged   metric.Int64ObservableGauge
	tokens      metric.Int64ObservableGauge
	compactions metric.Int64ObservableGauge
	patterns    metric.Int64ObservableGauge
	skills      metric.Int64ObservableGauge
	coverage    metric.Float64ObservableGauge

	mu   sync.Mutex
	days map[string]*domain.DailyMetricRecord
}

var _ ports.MetricsExporter = (*Exporter)(nil)

// NewExporter dials the configured OTLP gRPC endpoint.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Active() {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			otlpmetricgrpc.WithInsecure(),
		)
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}
	return newExporter(ctx, sdkmetric.NewPeriodicReader(exp))
}

func newExporter(ctx context.Context, reader sdkmetric.Reader) (*Exporter, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	e := &Exporter{provider: provider, days: make(map[string]*domain.DailyMetricRecord)}
	gauges := []struct {
		dst  *metric.Int64ObservableGauge
		name string
		desc string
		unit string
	}{
		{&e.commits, "devmetrics_commits", "Commits recorded on the day", "{commit}"},
		{&e.features, "devmetrics_features", "Feature commits recorded on the day", "{commit}"},
		{&e.prsMerged, "devmetrics_prs_merged", "Merge commits recorded on the day", "{merge}"},
		{&e.tokens, "devmetrics_tokens", "Tokens consumed on the day", "{token}"},
		{&e.compactions, "devmetrics_compactions", "Context compactions on the day", "{compaction}"},
		{&e.patterns, "devmetrics_patterns_matched", "Patterns matched on the day", "{match}"},
		{&e.skills, "devmetrics_skills_invoked", "Distinct skills invoked on the day", "{skill}"},
	}
	instruments := make([]metric.Observable, 0, len(gauges)+1)
	for _, g := range gauges {
		*g.dst, err = meter.Int64ObservableGauge(g.name, metric.WithDescription(g.desc), metric.WithUnit(g.unit))
		if err != nil {
			return nil, fmt.Errorf("creating %s gauge: %w", g.name, err)
		}
		instruments = append(instruments, *g.dst)
	}

	e.coverage, err = meter.Float64ObservableGauge(
		"devmetrics_test_coverage_percent",
		metric.WithDescription("Line test coverage at collection time"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating coverage gauge: %w", err)
	}
	instruments = append(instruments, e.coverage)

	if _, err := meter.RegisterCallback(e.observe, instruments...); err != nil {
		return nil, fmt.Errorf("registering gauge callback: %w", err)
	}
	return e, nil
}

// ExportDaily stores the record as the latest snapshot of its day. The
// reader picks it up on its next collection.
func (e *Exporter) ExportDaily(ctx context.Context, r *domain.DailyMetricRecord) error {
	if r == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.days[r.Date] = r.Clone()
	return nil
}

// observe reports every stored day. Sources marked unavailable are skipped
// so an unknown value is not reported as a zero.
func (e *Exporter) observe(ctx context.Context, o metric.Observer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for date, r := range e.days {
		opt := metric.WithAttributes(attribute.String("date", date))

		if r.IsAvailable(domain.SourceGit) {
			o.ObserveInt64(e.commits, int64(r.Productivity.Commits), opt)
			o.ObserveInt64(e.features, int64(r.Productivity.FeaturesCompleted), opt)
			o.ObserveInt64(e.prsMerged, int64(r.Productivity.PRsMerged), opt)
		}
		if r.IsAvailable(domain.SourceCoverage) {
			o.ObserveFloat64(e.coverage, r.Quality.TestCoverage, opt)
		}
		if r.IsAvailable(domain.SourceTokens) {
			o.ObserveInt64(e.tokens, r.Context.TokensUsed, opt)
			o.ObserveInt64(e.compactions, int64(r.Context.Compactions), opt)
		}
		if r.IsAvailable(domain.SourcePatterns) {
			o.ObserveInt64(e.patterns, int64(r.Learning.PatternsMatched), opt)
		}
		o.ObserveInt64(e.skills, int64(len(r.Learning.SkillsInvoked)), opt)
	}
	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
