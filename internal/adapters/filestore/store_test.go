package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/ports"
)

func newStore(t *testing.T) (*RecordStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewRecordStore(dir)
	if err != nil {
		t.Fatalf("NewRecordStore: %v", err)
	}
	return s, dir
}

func TestRecordStore_PutGet(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	r := domain.NewDailyMetricRecord(time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local))
	r.Productivity.Commits = 4
	r.Quality.TestCoverage = 81.5
	r.Learning.SkillsInvoked = []string{"debug", "tdd"}
	r.MarkUnavailable(domain.SourceTokens)

	if err := s.Put(ctx, r); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "daily", "2026-10-19.json")); err != nil {
		t.Fatalf("expected daily file: %v", err)
	}

	got, err := s.Get(ctx, "2026-10-19")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, r) {
		t.Errorf("Get = %+v, want %+v", got, r)
	}
}

func TestRecordStore_GetMissing(t *testing.T) {
	s, _ := newStore(t)

	got, err := s.Get(context.Background(), "2026-10-01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil record, got %+v", got)
	}
}

func TestRecordStore_GetCorrupt(t *testing.T) {
	s, dir := newStore(t)
	path := filepath.Join(dir, "daily", "2026-10-02.json")

	for name, content := range map[string]string{
		"truncated":     `{"date":"2026-10-02","productivity":{`,
		"wrong type":    `{"date":"2026-10-02","productivity":{"commits":"many"}}`,
		"date mismatch": `{"date":"2026-10-03"}`,
		"out of range":  `{"date":"2026-10-02","quality":{"test_coverage":500,"review_score_avg":15}}`,
		"negative":      `{"date":"2026-10-02","context":{"tokens_used":-4}}`,
	} {
		t.Run(name, func(t *testing.T) {
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := s.Get(context.Background(), "2026-10-02")
			if !errors.Is(err, ports.ErrCorruptRecord) {
				t.Errorf("expected ErrCorruptRecord, got %v", err)
			}
		})
	}
}

func TestRecordStore_RejectsBadDates(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "../../etc/passwd"); err == nil {
		t.Error("expected error for path-like date")
	}
	if err := s.Put(ctx, &domain.DailyMetricRecord{Date: "yesterday"}); err == nil {
		t.Error("expected error for invalid record date")
	}
}

func TestRecordStore_PutReplaces(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local)

	first := domain.NewDailyMetricRecord(day)
	first.Productivity.Commits = 9
	second := domain.NewDailyMetricRecord(day)
	second.Productivity.Commits = 1

	if err := s.Put(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "2026-10-19")
	if err != nil {
		t.Fatal(err)
	}
	if got.Productivity.Commits != 1 {
		t.Errorf("commits = %d, want 1", got.Productivity.Commits)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "daily"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file, got %d", len(entries))
	}
}

func TestReportStore_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	s, err := NewReportStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	path, err := s.Write(context.Background(), "weekly-2026-10-19.md", []byte("# report\n"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# report\n" {
		t.Errorf("content = %q", data)
	}

	if _, err := s.Write(context.Background(), "../escape.md", nil); err == nil {
		t.Error("expected error for name with separator")
	}
}
