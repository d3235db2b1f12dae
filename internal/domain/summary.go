package domain

import (
	"math"
	"time"
)

// DefaultSkillCap is how many skills a report lists.
const DefaultSkillCap = 10

// Totals sums every numeric field over the records found in a period.
type Totals struct {
	FeaturesCompleted int
	Commits           int
	PRsMerged         int
	TestCoverage      float64
	ReviewScore       float64
	BugsFound         int
	PatternsMatched   int
	TokensUsed        int64
	Compactions       int
}

// Averages are per tracked day. Token usage is rounded to an integer,
// everything else to one decimal.
type Averages struct {
	FeaturesCompleted float64
	Commits           float64
	PRsMerged         float64
	TestCoverage      float64
	ReviewScore       float64
	BugsFound         float64
	PatternsMatched   float64
	TokensUsed        int64
	Compactions       float64
}

// WeeklySummary is derived from the DailyMetricRecords of a period. It is
// never persisted as a source of truth.
type WeeklySummary struct {
	Period          DateRange
	DaysCount       int
	Totals          Totals
	Averages        Averages
	Skills          []string
	TopSkills       []string
	Recommendations []string
	Trends          []MetricTrend
	GeneratedAt     time.Time
}

// AggregateOptions tunes Aggregate. Zero values fall back to defaults.
type AggregateOptions struct {
	SkillCap   int
	Thresholds Thresholds
	Rules      []Rule
	// Previous enables trend indicators against an earlier summary.
	Previous *WeeklySummary
	Now      time.Time
}

// Aggregate builds a summary from the records whose date falls within
// period. Missing days are not zero-filled: DaysCount only counts records
// present, and with no records every average is zero.
func Aggregate(period DateRange, records []*DailyMetricRecord, opts AggregateOptions) *WeeklySummary {
	s := &WeeklySummary{
		Period:      period,
		GeneratedAt: opts.Now,
	}
	if s.GeneratedAt.IsZero() {
		s.GeneratedAt = time.Now()
	}

	seen := make(map[string]bool)
	var skillLists [][]string
	for _, r := range records {
		if r == nil || !period.Contains(r.Date) || seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		s.DaysCount++

		s.Totals.FeaturesCompleted += r.Productivity.FeaturesCompleted
		s.Totals.Commits += r.Productivity.Commits
		s.Totals.PRsMerged += r.Productivity.PRsMerged
		s.Totals.TestCoverage += r.Quality.TestCoverage
		s.Totals.ReviewScore += r.Quality.ReviewScoreAvg
		s.Totals.BugsFound += r.Quality.BugsFound
		s.Totals.PatternsMatched += r.Learning.PatternsMatched
		s.Totals.TokensUsed += r.Context.TokensUsed
		s.Totals.Compactions += r.Context.Compactions
		skillLists = append(skillLists, r.Learning.SkillsInvoked)
	}

	s.Averages = averages(s.Totals, s.DaysCount)
	s.Skills = UnionSorted(skillLists...)

	limit := opts.SkillCap
	if limit <= 0 {
		limit = DefaultSkillCap
	}
	s.TopSkills = s.Skills
	if len(s.TopSkills) > limit {
		s.TopSkills = s.TopSkills[:limit]
	}

	th := opts.Thresholds.withDefaults()
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	s.Recommendations = Recommend(s, th, rules)

	if opts.Previous != nil {
		s.Trends = ComputeTrends(s.Averages, opts.Previous.Averages)
	}
	return s
}

func averages(t Totals, days int) Averages {
	if days == 0 {
		return Averages{}
	}
	n := float64(days)
	return Averages{
		FeaturesCompleted: Round1(float64(t.FeaturesCompleted) / n),
		Commits:           Round1(float64(t.Commits) / n),
		PRsMerged:         Round1(float64(t.PRsMerged) / n),
		TestCoverage:      Round1(t.TestCoverage / n),
		ReviewScore:       Round1(t.ReviewScore / n),
		BugsFound:         Round1(float64(t.BugsFound) / n),
		PatternsMatched:   Round1(float64(t.PatternsMatched) / n),
		TokensUsed:        RoundInt(float64(t.TokensUsed) / n),
		Compactions:       Round1(float64(t.Compactions) / n),
	}
}

// roundEpsilon absorbs binary representation error so that decimal halves
// such as 1.15 round up.
const roundEpsilon = 1e-9

// Round1 rounds a non-negative value half-up to one decimal place.
func Round1(x float64) float64 {
	return math.Floor(x*10+0.5+roundEpsilon) / 10
}

// RoundInt rounds a non-negative value half-up to the nearest integer.
func RoundInt(x float64) int64 {
	return int64(math.Floor(x + 0.5 + roundEpsilon))
}
