package domain

import "testing"

func TestCompareTrend(t *testing.T) {
	tests := []struct {
		current, previous float64
		want              Trend
	}{
		{5, 3, TrendIncrease},
		{3, 5, TrendDecrease},
		{4, 4, TrendUnchanged},
		{0, 0, TrendUnchanged},
		{68.4, 68.3, TrendIncrease},
	}
	for _, tt := range tests {
		if got := CompareTrend(tt.current, tt.previous); got != tt.want {
			t.Errorf("CompareTrend(%v, %v) = %s, want %s", tt.current, tt.previous, got, tt.want)
		}
	}
}

func TestTrendSymbol(t *testing.T) {
	if TrendIncrease.Symbol() != "↑" || TrendDecrease.Symbol() != "↓" || TrendUnchanged.Symbol() != "→" {
		t.Error("unexpected trend symbols")
	}
}
