package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/ports"
)

const maxRetries = 2

// RecordStore keeps one row per date in daily_records. The curated fields
// and the skill list live in their own columns and rows so they can be
// queried directly; they win over the copy inside the record JSON.
type RecordStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.RecordStore = (*RecordStore)(nil)

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db, now: time.Now}
}

type storedRow struct {
	record string
	review float64
	bugs   int
	skills []string
}

func (s *RecordStore) Get(ctx context.Context, date string) (*domain.DailyMetricRecord, error) {
	if _, err := domain.ParseDate(date, time.UTC); err != nil {
		return nil, err
	}

	row, err := withRetry(ctx, maxRetries, func() (*storedRow, error) {
		return s.load(ctx, date)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", date, err)
	}
	if row == nil {
		return nil, nil
	}

	var r domain.DailyMetricRecord
	if err := json.Unmarshal([]byte(row.record), &r); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrCorruptRecord, date, err)
	}
	if r.Date != date {
		return nil, fmt.Errorf("%w: %s: holds date %q", ports.ErrCorruptRecord, date, r.Date)
	}

	r.Quality.ReviewScoreAvg = row.review
	r.Quality.BugsFound = row.bugs
	r.Learning.SkillsInvoked = domain.UnionSorted(row.skills)
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrCorruptRecord, date, err)
	}
	return &r, nil
}

func (s *RecordStore) load(ctx context.Context, date string) (*storedRow, error) {
	var row storedRow
	err := s.db.QueryRowContext(ctx,
		`SELECT record, review_score_avg, bugs_found FROM daily_records WHERE date = ?`, date,
	).Scan(&row.record, &row.review, &row.bugs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT skill FROM daily_skills WHERE date = ? ORDER BY skill`, date)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var skill string
		if err := rows.Scan(&skill); err != nil {
			return nil, err
		}
		row.skills = append(row.skills, skill)
	}
	return &row, rows.Err()
}

// Put replaces the row and its skills inside one transaction.
func (s *RecordStore) Put(ctx context.Context, r *domain.DailyMetricRecord) error {
	if r == nil {
		return fmt.Errorf("nil record")
	}
	if err := r.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO daily_records (date, record, review_score_avg, bugs_found, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			record = excluded.record,
			review_score_avg = excluded.review_score_avg,
			bugs_found = excluded.bugs_found,
			updated_at = excluded.updated_at
	`, r.Date, string(data), r.Quality.ReviewScoreAvg, r.Quality.BugsFound, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", r.Date, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_skills WHERE date = ?`, r.Date); err != nil {
		return fmt.Errorf("failed to clear skills for %s: %w", r.Date, err)
	}
	for _, skill := range domain.UnionSorted(r.Learning.SkillsInvoked) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO daily_skills (date, skill) VALUES (?, ?)`, r.Date, skill); err != nil {
			return fmt.Errorf("failed to insert skill %q for %s: %w", skill, r.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit record %s: %w", r.Date, err)
	}
	return nil
}
