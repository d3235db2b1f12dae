package ports_test

import (
	"testing"

	"github.com/emiliopalmerini/devmetrics/internal/adapters/coverage"
	"github.com/emiliopalmerini/devmetrics/internal/adapters/eventlog"
	"github.com/emiliopalmerini/devmetrics/internal/adapters/filestore"
	"github.com/emiliopalmerini/devmetrics/internal/adapters/git"
	"github.com/emiliopalmerini/devmetrics/internal/adapters/otel"
	"github.com/emiliopalmerini/devmetrics/internal/adapters/turso"
	"github.com/emiliopalmerini/devmetrics/internal/ports"
)

// Compile-time interface conformance checks.
// These verify that concrete adapters properly implement their port interfaces.

func TestRecordStoreConformance(t *testing.T) {
	var _ ports.RecordStore = (*filestore.RecordStore)(nil)
	var _ ports.RecordStore = (*turso.RecordStore)(nil)
}

func TestReportWriterConformance(t *testing.T) {
	var _ ports.ReportWriter = (*filestore.ReportStore)(nil)
}

func TestVCSSourceConformance(t *testing.T) {
	var _ ports.VCSSource = (*git.Source)(nil)
}

func TestCoverageReaderConformance(t *testing.T) {
	var _ ports.CoverageReader = (*coverage.Reader)(nil)
}

func TestEventLogConformance(t *testing.T) {
	var _ ports.SkillLog = (*eventlog.Log)(nil)
	var _ ports.PatternLog = (*eventlog.Log)(nil)
	var _ ports.TokenLog = (*eventlog.Log)(nil)
	var _ ports.EventRecorder = (*eventlog.Log)(nil)
}

func TestMetricsExporterConformance(t *testing.T) {
	var _ ports.MetricsExporter = (*otel.Exporter)(nil)
	var _ ports.MetricsExporter = otel.NoOpExporter{}
}
