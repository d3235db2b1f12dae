package domain

// Thresholds drive the recommendation rules.
type Thresholds struct {
	MinAvgCommits     float64 `mapstructure:"min_avg_commits" yaml:"min_avg_commits" envconfig:"MIN_AVG_COMMITS"`
	MinAvgCoverage    float64 `mapstructure:"min_avg_coverage" yaml:"min_avg_coverage" envconfig:"MIN_AVG_COVERAGE"`
	MaxAvgTokens      int64   `mapstructure:"max_avg_tokens" yaml:"max_avg_tokens" envconfig:"MAX_AVG_TOKENS"`
	MinDistinctSkills int     `mapstructure:"min_distinct_skills" yaml:"min_distinct_skills" envconfig:"MIN_DISTINCT_SKILLS"`
}

// DefaultThresholds returns the stock rule thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinAvgCommits:     5,
		MinAvgCoverage:    70,
		MaxAvgTokens:      50000,
		MinDistinctSkills: 3,
	}
}

// withDefaults returns the stock thresholds when t was never set. A
// partially set value is kept as is, so an explicit zero disables its rule.
func (t Thresholds) withDefaults() Thresholds {
	if t == (Thresholds{}) {
		return DefaultThresholds()
	}
	return t
}

// Recommendation messages.
const (
	RecCommitFrequency = "Increase commit frequency: make smaller, more frequent commits."
	RecCoverage        = "Improve test coverage: prioritize tests for untested code paths."
	RecContext         = "Reduce context usage: load more targeted context per task."
	RecSkills          = "Explore more skills: try skills you have not used this period."
	RecOnTrack         = "Great work! All tracked metrics are within healthy ranges."
)

// Rule is an independent predicate over a summary that contributes one
// recommendation when it holds.
type Rule struct {
	Name    string
	Message string
	Applies func(s *WeeklySummary, th Thresholds) bool
}

// DefaultRules returns the recommendation rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "commit_frequency",
			Message: RecCommitFrequency,
			Applies: func(s *WeeklySummary, th Thresholds) bool {
				return s.Averages.Commits < th.MinAvgCommits
			},
		},
		{
			Name:    "test_coverage",
			Message: RecCoverage,
			Applies: func(s *WeeklySummary, th Thresholds) bool {
				return s.Averages.TestCoverage < th.MinAvgCoverage
			},
		},
		{
			Name:    "context_usage",
			Message: RecContext,
			Applies: func(s *WeeklySummary, th Thresholds) bool {
				return s.Averages.TokensUsed > th.MaxAvgTokens
			},
		},
		{
			Name:    "skill_variety",
			Message: RecSkills,
			Applies: func(s *WeeklySummary, th Thresholds) bool {
				return len(s.Skills) < th.MinDistinctSkills
			},
		},
	}
}

// Recommend evaluates every rule in order and collects the messages of
// those that apply. When none applies the result is RecOnTrack alone.
func Recommend(s *WeeklySummary, th Thresholds, rules []Rule) []string {
	var out []string
	for _, r := range rules {
		if r.Applies(s, th) {
			out = append(out, r.Message)
		}
	}
	if len(out) == 0 {
		out = []string{RecOnTrack}
	}
	return out
}
