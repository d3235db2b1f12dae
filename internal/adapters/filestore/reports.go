package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReportStore writes rendered reports into a directory.
type ReportStore struct {
	baseDir string
}

func NewReportStore(dir string) (*ReportStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &ReportStore{baseDir: dir}, nil
}

func (s *ReportStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid report name %q", name)
	}
	path := filepath.Join(s.baseDir, name)
	if err := WriteFileAtomic(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
