package domain

// Trend is the direction of a metric between two periods.
type Trend string

const (
	TrendIncrease  Trend = "increase"
	TrendDecrease  Trend = "decrease"
	TrendUnchanged Trend = "unchanged"
)

// CompareTrend compares a current value with the previous period's value.
func CompareTrend(current, previous float64) Trend {
	switch {
	case current > previous:
		return TrendIncrease
	case current < previous:
		return TrendDecrease
	default:
		return TrendUnchanged
	}
}

// Symbol is a compact arrow for tables.
func (t Trend) Symbol() string {
	switch t {
	case TrendIncrease:
		return "↑"
	case TrendDecrease:
		return "↓"
	default:
		return "→"
	}
}

// MetricTrend pairs a metric's averages across two periods.
type MetricTrend struct {
	Metric   string
	Current  float64
	Previous float64
	Trend    Trend
}

// ComputeTrends compares the daily averages of two periods.
func ComputeTrends(current, previous Averages) []MetricTrend {
	pairs := []struct {
		name     string
		cur, prv float64
	}{
		{"Commits", current.Commits, previous.Commits},
		{"Features completed", current.FeaturesCompleted, previous.FeaturesCompleted},
		{"PRs merged", current.PRsMerged, previous.PRsMerged},
		{"Test coverage", current.TestCoverage, previous.TestCoverage},
		{"Review score", current.ReviewScore, previous.ReviewScore},
		{"Bugs found", current.BugsFound, previous.BugsFound},
		{"Patterns matched", current.PatternsMatched, previous.PatternsMatched},
		{"Tokens used", float64(current.TokensUsed), float64(previous.TokensUsed)},
		{"Compactions", current.Compactions, previous.Compactions},
	}

	trends := make([]MetricTrend, 0, len(pairs))
	for _, p := range pairs {
		trends = append(trends, MetricTrend{
			Metric:   p.name,
			Current:  p.cur,
			Previous: p.prv,
			Trend:    CompareTrend(p.cur, p.prv),
		})
	}
	return trends
}
