package ports

import (
	"context"
	"errors"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
)

// ErrCorruptRecord is returned (wrapped) when a stored record exists but
// cannot be decoded. Callers treat such a record as absent.
var ErrCorruptRecord = errors.New("corrupt daily record")

// RecordStore persists one DailyMetricRecord per calendar date.
type RecordStore interface {
	// Get returns the record for an ISO date, or nil when none exists.
	Get(ctx context.Context, date string) (*domain.DailyMetricRecord, error)
	// Put replaces the record for r.Date in a single atomic step.
	Put(ctx context.Context, r *domain.DailyMetricRecord) error
}

// ReportWriter stores rendered reports.
type ReportWriter interface {
	Write(ctx context.Context, name string, data []byte) (path string, err error)
}
