// Package filestore keeps daily records and reports as plain files. Writes
// replace whole files by atomic rename; concurrent writers of the same day
// are not coordinated and the last rename wins.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/ports"
)

// RecordStore keeps one JSON file per day under <dataDir>/daily.
type RecordStore struct {
	baseDir string
}

func NewRecordStore(dataDir string) (*RecordStore, error) {
	dailyDir := filepath.Join(dataDir, "daily")
	if err := os.MkdirAll(dailyDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create daily metrics directory: %w", err)
	}
	return &RecordStore{baseDir: dailyDir}, nil
}

func (s *RecordStore) Get(ctx context.Context, date string) (*domain.DailyMetricRecord, error) {
	path, err := s.getPath(date)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read daily record: %w", err)
	}

	var r domain.DailyMetricRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrCorruptRecord, path, err)
	}
	if r.Date != date {
		return nil, fmt.Errorf("%w: %s: date field %q does not match file name", ports.ErrCorruptRecord, path, r.Date)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrCorruptRecord, path, err)
	}
	if r.Learning.SkillsInvoked == nil {
		r.Learning.SkillsInvoked = []string{}
	}
	return &r, nil
}

func (s *RecordStore) Put(ctx context.Context, r *domain.DailyMetricRecord) error {
	if r == nil {
		return fmt.Errorf("nil record")
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid record: %w", err)
	}
	path, err := s.getPath(r.Date)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode daily record: %w", err)
	}
	data = append(data, '\n')

	if err := WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write daily record: %w", err)
	}
	return nil
}

// Path returns the file backing the record for date.
func (s *RecordStore) Path(date string) (string, error) {
	return s.getPath(date)
}

func (s *RecordStore) getPath(date string) (string, error) {
	// Parsing guards the file name against anything but a calendar date.
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return filepath.Join(s.baseDir, date+".json"), nil
}
