package domain

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC)
}

func record(d, commits int, coverage float64, skills ...string) *DailyMetricRecord {
	r := NewDailyMetricRecord(day(d))
	r.Productivity.Commits = commits
	r.Quality.TestCoverage = coverage
	r.Learning.SkillsInvoked = skills
	return r
}

func TestAggregate_ThreeDayScenario(t *testing.T) {
	period := LastNDays(day(15), 3)
	records := []*DailyMetricRecord{
		record(13, 3, 60),
		record(14, 7, 80),
		record(15, 2, 65),
	}

	s := Aggregate(period, records, AggregateOptions{})

	if s.DaysCount != 3 {
		t.Errorf("DaysCount = %d, want 3", s.DaysCount)
	}
	if s.Totals.Commits != 12 {
		t.Errorf("Totals.Commits = %d, want 12", s.Totals.Commits)
	}
	assertFloatNear(t, "Averages.Commits", 4.0, s.Averages.Commits)
	assertFloatNear(t, "Averages.TestCoverage", 68.3, s.Averages.TestCoverage)

	if !slices.Contains(s.Recommendations, RecCommitFrequency) {
		t.Errorf("missing commit frequency recommendation: %v", s.Recommendations)
	}
	if !slices.Contains(s.Recommendations, RecCoverage) {
		t.Errorf("missing coverage recommendation: %v", s.Recommendations)
	}
}

func TestAggregate_MissingDaysExcluded(t *testing.T) {
	period := LastNDays(day(15), 5)
	records := []*DailyMetricRecord{
		record(11, 6, 90),
		record(13, 6, 90),
		record(15, 6, 90),
	}

	s := Aggregate(period, records, AggregateOptions{})

	if s.DaysCount != 3 {
		t.Fatalf("DaysCount = %d, want 3", s.DaysCount)
	}
	if s.Totals.Commits != 18 {
		t.Errorf("Totals.Commits = %d, want 18", s.Totals.Commits)
	}
	assertFloatNear(t, "Averages.Commits", 6.0, s.Averages.Commits)
	assertFloatNear(t, "Averages.TestCoverage", 90, s.Averages.TestCoverage)
}

func TestAggregate_IgnoresOutOfRangeAndDuplicates(t *testing.T) {
	period := LastNDays(day(15), 2)
	records := []*DailyMetricRecord{
		record(10, 100, 10),
		record(14, 4, 50),
		record(14, 4, 50),
		nil,
		record(15, 6, 70),
	}

	s := Aggregate(period, records, AggregateOptions{})

	if s.DaysCount != 2 || s.Totals.Commits != 10 {
		t.Errorf("DaysCount = %d, Totals.Commits = %d; want 2, 10", s.DaysCount, s.Totals.Commits)
	}
}

func TestAggregate_NoRecords(t *testing.T) {
	s := Aggregate(LastNDays(day(15), 7), nil, AggregateOptions{})

	if s.DaysCount != 0 {
		t.Errorf("DaysCount = %d, want 0", s.DaysCount)
	}
	if !reflect.DeepEqual(s.Averages, Averages{}) {
		t.Errorf("Averages = %+v, want all zero", s.Averages)
	}
	for _, v := range []float64{s.Averages.Commits, s.Averages.TestCoverage, float64(s.Averages.TokensUsed)} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("average is %v", v)
		}
	}
	if s.Skills == nil || len(s.Skills) != 0 {
		t.Errorf("Skills = %#v, want empty", s.Skills)
	}
}

func TestAggregate_SkillCap(t *testing.T) {
	var skills []string
	for i := 13; i >= 0; i-- {
		skills = append(skills, fmt.Sprintf("skill-%02d", i))
	}
	records := []*DailyMetricRecord{
		record(14, 5, 80, skills[:7]...),
		record(15, 5, 80, skills[7:]...),
	}

	s := Aggregate(LastNDays(day(15), 7), records, AggregateOptions{})

	if len(s.Skills) != 14 {
		t.Fatalf("len(Skills) = %d, want 14", len(s.Skills))
	}
	if len(s.TopSkills) != 10 {
		t.Fatalf("len(TopSkills) = %d, want 10", len(s.TopSkills))
	}
	for i, name := range s.TopSkills {
		if want := fmt.Sprintf("skill-%02d", i); name != want {
			t.Errorf("TopSkills[%d] = %q, want %q", i, name, want)
		}
	}

	capped := Aggregate(LastNDays(day(15), 7), records, AggregateOptions{SkillCap: 3})
	if len(capped.TopSkills) != 3 {
		t.Errorf("len(TopSkills) with cap 3 = %d", len(capped.TopSkills))
	}
}

func TestAggregate_TokenAverageRoundsToInteger(t *testing.T) {
	a := NewDailyMetricRecord(day(14))
	a.Context.TokensUsed = 1000
	b := NewDailyMetricRecord(day(15))
	b.Context.TokensUsed = 1001

	s := Aggregate(LastNDays(day(15), 2), []*DailyMetricRecord{a, b}, AggregateOptions{})

	if s.Averages.TokensUsed != 1001 {
		t.Errorf("Averages.TokensUsed = %d, want 1001 (1000.5 rounded half-up)", s.Averages.TokensUsed)
	}
	if s.Totals.TokensUsed != 2001 {
		t.Errorf("Totals.TokensUsed = %d, want 2001", s.Totals.TokensUsed)
	}
}

func TestAggregate_WithPreviousAddsTrends(t *testing.T) {
	prev := Aggregate(LastNDays(day(8), 7), []*DailyMetricRecord{record(8, 2, 80)}, AggregateOptions{})
	cur := Aggregate(LastNDays(day(15), 7), []*DailyMetricRecord{record(15, 6, 70)}, AggregateOptions{Previous: prev})

	if len(cur.Trends) == 0 {
		t.Fatal("expected trends")
	}
	got := map[string]Trend{}
	for _, tr := range cur.Trends {
		got[tr.Metric] = tr.Trend
	}
	if got["Commits"] != TrendIncrease {
		t.Errorf("Commits trend = %s, want increase", got["Commits"])
	}
	if got["Test coverage"] != TrendDecrease {
		t.Errorf("Test coverage trend = %s, want decrease", got["Test coverage"])
	}
	if got["Tokens used"] != TrendUnchanged {
		t.Errorf("Tokens used trend = %s, want unchanged", got["Tokens used"])
	}

	if plain := Aggregate(LastNDays(day(15), 7), nil, AggregateOptions{}); plain.Trends != nil {
		t.Error("trends must be absent without a previous summary")
	}
}

func TestRecommend(t *testing.T) {
	healthy := func() *WeeklySummary {
		return &WeeklySummary{
			Averages: Averages{Commits: 6, TestCoverage: 85, TokensUsed: 20000},
			Skills:   []string{"a", "b", "c"},
		}
	}

	tests := []struct {
		name   string
		mutate func(s *WeeklySummary)
		want   []string
	}{
		{"all healthy", func(s *WeeklySummary) {}, []string{RecOnTrack}},
		{"low commits", func(s *WeeklySummary) { s.Averages.Commits = 4.9 }, []string{RecCommitFrequency}},
		{"commits at threshold", func(s *WeeklySummary) { s.Averages.Commits = 5 }, []string{RecOnTrack}},
		{"low coverage", func(s *WeeklySummary) { s.Averages.TestCoverage = 69.9 }, []string{RecCoverage}},
		{"high tokens", func(s *WeeklySummary) { s.Averages.TokensUsed = 50001 }, []string{RecContext}},
		{"tokens at threshold", func(s *WeeklySummary) { s.Averages.TokensUsed = 50000 }, []string{RecOnTrack}},
		{"few skills", func(s *WeeklySummary) { s.Skills = []string{"a", "b"} }, []string{RecSkills}},
		{
			"everything fires in order",
			func(s *WeeklySummary) {
				s.Averages = Averages{Commits: 1, TestCoverage: 10, TokensUsed: 90000}
				s.Skills = nil
			},
			[]string{RecCommitFrequency, RecCoverage, RecContext, RecSkills},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := healthy()
			tt.mutate(s)
			got := Recommend(s, DefaultThresholds(), DefaultRules())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Recommend() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecommend_CustomThresholds(t *testing.T) {
	s := &WeeklySummary{
		Averages: Averages{Commits: 6, TestCoverage: 85, TokensUsed: 20000},
		Skills:   []string{"a", "b", "c"},
	}
	th := DefaultThresholds()
	th.MinAvgCommits = 10

	got := Recommend(s, th, DefaultRules())
	if !reflect.DeepEqual(got, []string{RecCommitFrequency}) {
		t.Errorf("Recommend() = %v", got)
	}
}

func TestAggregate_ExplicitZeroThreshold(t *testing.T) {
	period := LastNDays(day(15), 1)
	records := []*DailyMetricRecord{record(15, 6, 80)}

	unset := Aggregate(period, records, AggregateOptions{})
	if !slices.Contains(unset.Recommendations, RecSkills) {
		t.Errorf("unset thresholds should fall back to defaults: %v", unset.Recommendations)
	}

	th := DefaultThresholds()
	th.MinDistinctSkills = 0
	s := Aggregate(period, records, AggregateOptions{Thresholds: th})
	if !reflect.DeepEqual(s.Recommendations, []string{RecOnTrack}) {
		t.Errorf("min_distinct_skills 0 should disable the skills rule: %v", s.Recommendations)
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{68.3333, 68.3},
		{68.35, 68.4},
		{1.15, 1.2},
		{2.25, 2.3},
		{4, 4},
		{0, 0},
		{99.94, 99.9},
		{99.95, 100},
	}
	for _, tt := range tests {
		assertFloatNear(t, fmt.Sprintf("Round1(%v)", tt.in), tt.want, Round1(tt.in))
	}
}

func TestRoundInt(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{1000.5, 1001},
		{1000.49, 1000},
		{0, 0},
		{49999.5, 50000},
	}
	for _, tt := range tests {
		if got := RoundInt(tt.in); got != tt.want {
			t.Errorf("RoundInt(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func assertFloatNear(t *testing.T, name string, expected, actual float64) {
	t.Helper()
	if math.Abs(expected-actual) > 0.0001 {
		t.Errorf("%s: expected %.6f, got %.6f", name, expected, actual)
	}
}
