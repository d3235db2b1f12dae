package domain

import (
	"fmt"
	"slices"
	"time"
)

// Signal sources feeding a DailyMetricRecord.
const (
	SourceGit      = "git"
	SourceCoverage = "coverage"
	SourceSkills   = "skills"
	SourcePatterns = "patterns"
	SourceTokens   = "tokens"
)

// Productivity holds version-control derived counters.
type Productivity struct {
	FeaturesCompleted int `json:"features_completed"`
	Commits           int `json:"commits"`
	PRsMerged         int `json:"prs_merged"`
}

// Quality holds coverage plus the manually curated review fields.
type Quality struct {
	TestCoverage   float64 `json:"test_coverage"`
	ReviewScoreAvg float64 `json:"review_score_avg"`
	BugsFound      int     `json:"bugs_found"`
}

// Learning holds skill and pattern usage.
type Learning struct {
	SkillsInvoked   []string `json:"skills_invoked"`
	PatternsMatched int      `json:"patterns_matched"`
}

// ContextUsage holds token consumption for the day.
type ContextUsage struct {
	TokensUsed  int64 `json:"tokens_used"`
	Compactions int   `json:"compactions"`
}

// DailyMetricRecord is the snapshot of one calendar day. Date is the key,
// formatted as DateLayout.
//
// Unavailable lists the sources that could not be read on the last
// collection, so a zero next to a listed source means "unknown" rather
// than "measured zero".
type DailyMetricRecord struct {
	Date         string       `json:"date"`
	Productivity Productivity `json:"productivity"`
	Quality      Quality      `json:"quality"`
	Learning     Learning     `json:"learning"`
	Context      ContextUsage `json:"context"`
	Unavailable  []string     `json:"unavailable,omitempty"`
}

// NewDailyMetricRecord returns an empty record for the given day.
func NewDailyMetricRecord(day time.Time) *DailyMetricRecord {
	return &DailyMetricRecord{
		Date:     FormatDate(day),
		Learning: Learning{SkillsInvoked: []string{}},
	}
}

// Day parses the record's date in loc.
func (r *DailyMetricRecord) Day(loc *time.Location) (time.Time, error) {
	return ParseDate(r.Date, loc)
}

// IsAvailable reports whether source was readable on the last collection.
func (r *DailyMetricRecord) IsAvailable(source string) bool {
	return !slices.Contains(r.Unavailable, source)
}

// MarkUnavailable records that source could not be read.
func (r *DailyMetricRecord) MarkUnavailable(source string) {
	if slices.Contains(r.Unavailable, source) {
		return
	}
	r.Unavailable = append(r.Unavailable, source)
	slices.Sort(r.Unavailable)
}

// Clone returns a deep copy.
func (r *DailyMetricRecord) Clone() *DailyMetricRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Learning.SkillsInvoked = slices.Clone(r.Learning.SkillsInvoked)
	if c.Learning.SkillsInvoked == nil {
		c.Learning.SkillsInvoked = []string{}
	}
	c.Unavailable = slices.Clone(r.Unavailable)
	return &c
}

// Validate checks the date key and value ranges.
func (r *DailyMetricRecord) Validate() error {
	if _, err := ParseDate(r.Date, time.UTC); err != nil {
		return fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	if r.Quality.TestCoverage < 0 || r.Quality.TestCoverage > 100 {
		return fmt.Errorf("test_coverage %.1f out of range [0, 100]", r.Quality.TestCoverage)
	}
	if r.Quality.ReviewScoreAvg < 0 || r.Quality.ReviewScoreAvg > 10 {
		return fmt.Errorf("review_score_avg %.1f out of range [0, 10]", r.Quality.ReviewScoreAvg)
	}
	if r.Quality.BugsFound < 0 {
		return fmt.Errorf("bugs_found must not be negative")
	}
	if r.Context.TokensUsed < 0 || r.Context.Compactions < 0 {
		return fmt.Errorf("context counters must not be negative")
	}
	return nil
}

// Merge combines a stored record with freshly computed signals for the same
// day. Curated fields (review score, bugs found) are kept from existing,
// skills are unioned, and every other field is taken from fresh. Applying
// the same fresh record twice yields the same result.
func Merge(existing, fresh *DailyMetricRecord) *DailyMetricRecord {
	out := fresh.Clone()
	out.Learning.SkillsInvoked = UnionSorted(out.Learning.SkillsInvoked)
	if existing == nil {
		return out
	}

	out.Quality.ReviewScoreAvg = existing.Quality.ReviewScoreAvg
	out.Quality.BugsFound = existing.Quality.BugsFound
	out.Learning.SkillsInvoked = UnionSorted(existing.Learning.SkillsInvoked, fresh.Learning.SkillsInvoked)
	return out
}

// UnionSorted returns the sorted set union of the given lists, dropping
// empty names. The result is never nil.
func UnionSorted(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, s := range list {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}
