package ports

import (
	"context"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
)

// MetricsExporter exports daily metrics to an external observability system.
type MetricsExporter interface {
	// ExportDaily exports the values of a freshly collected record.
	ExportDaily(ctx context.Context, r *domain.DailyMetricRecord) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
