package otel

import (
	"context"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/ports"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

var _ ports.MetricsExporter = NoOpExporter{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() NoOpExporter {
	return NoOpExporter{}
}

func (NoOpExporter) ExportDaily(ctx context.Context, r *domain.DailyMetricRecord) error {
	return nil
}

func (NoOpExporter) Close(ctx context.Context) error {
	return nil
}
