package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/util"
)

// Terminal renders summaries and records for an interactive terminal.
type Terminal struct {
	styles *Styles
}

func NewTerminal() *Terminal {
	return &Terminal{styles: DefaultStyles()}
}

func (t *Terminal) row(label, value string) string {
	return t.styles.Label.Render(label) + t.styles.Value.Render(value)
}

func (t *Terminal) section(title string, rows ...string) string {
	return t.styles.Section.Render(title) + "\n" + strings.Join(rows, "\n")
}

// Summary renders a weekly summary as a bordered card.
func (t *Terminal) Summary(s *domain.WeeklySummary) string {
	st := t.styles
	header := st.Title.Render("Weekly Development Metrics") + "\n" +
		st.Muted.Render(fmt.Sprintf("%s  |  %d of %d days tracked", s.Period, s.DaysCount, s.Period.Len()))

	blocks := []string{
		header,
		t.section("Productivity",
			t.row("Features completed", fmt.Sprintf("%d (%s/day)", s.Totals.FeaturesCompleted, util.FormatDecimal(s.Averages.FeaturesCompleted))),
			t.row("Commits", fmt.Sprintf("%d (%s/day)", s.Totals.Commits, util.FormatDecimal(s.Averages.Commits))),
			t.row("PRs merged", fmt.Sprintf("%d (%s/day)", s.Totals.PRsMerged, util.FormatDecimal(s.Averages.PRsMerged))),
		),
		t.section("Quality",
			t.row("Test coverage", util.FormatPercent(s.Averages.TestCoverage)),
			t.row("Review score", util.FormatDecimal(s.Averages.ReviewScore)+" / 10"),
			t.row("Bugs found", fmt.Sprintf("%d", s.Totals.BugsFound)),
		),
		t.section("Learning",
			t.row("Skills", t.skillList(s.TopSkills, len(s.Skills))),
			t.row("Patterns matched", fmt.Sprintf("%d", s.Totals.PatternsMatched)),
		),
		t.section("Context",
			t.row("Tokens used", fmt.Sprintf("%s (%s/day)", util.FormatTokens(s.Totals.TokensUsed), util.FormatTokens(s.Averages.TokensUsed))),
			t.row("Compactions", fmt.Sprintf("%d (%s/day)", s.Totals.Compactions, util.FormatDecimal(s.Averages.Compactions))),
		),
	}

	if len(s.Trends) > 0 {
		var rows []string
		for _, tr := range s.Trends {
			rows = append(rows, t.row(tr.Metric, fmt.Sprintf("%s -> %s ",
				formatTrendValue(tr.Metric, tr.Previous), formatTrendValue(tr.Metric, tr.Current)))+t.trend(tr.Trend))
		}
		blocks = append(blocks, t.section("Trends", rows...))
	}

	var recs []string
	for _, r := range s.Recommendations {
		style := st.Advice
		if r == domain.RecOnTrack {
			style = st.Positive
		}
		recs = append(recs, style.Render("• "+r))
	}
	blocks = append(blocks, t.section("Recommendations", recs...))

	return st.Card.Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

// Record renders one day's record. Values from unavailable sources are
// shown as "n/a".
func (t *Terminal) Record(r *domain.DailyMetricRecord) string {
	st := t.styles
	na := st.Muted.Render("n/a")
	val := func(source, v string) string {
		if !r.IsAvailable(source) {
			return na
		}
		return v
	}
	row := func(label, v string) string {
		return st.Label.Render(label) + st.Value.Render(v)
	}

	blocks := []string{
		st.Title.Render("Daily metrics for " + r.Date),
		t.section("Productivity",
			row("Features completed", val(domain.SourceGit, fmt.Sprintf("%d", r.Productivity.FeaturesCompleted))),
			row("Commits", val(domain.SourceGit, fmt.Sprintf("%d", r.Productivity.Commits))),
			row("PRs merged", val(domain.SourceGit, fmt.Sprintf("%d", r.Productivity.PRsMerged))),
		),
		t.section("Quality",
			row("Test coverage", val(domain.SourceCoverage, util.FormatPercent(r.Quality.TestCoverage))),
			row("Review score", util.FormatDecimal(r.Quality.ReviewScoreAvg)+" / 10"),
			row("Bugs found", fmt.Sprintf("%d", r.Quality.BugsFound)),
		),
		t.section("Learning",
			row("Skills", val(domain.SourceSkills, t.skillList(r.Learning.SkillsInvoked, len(r.Learning.SkillsInvoked)))),
			row("Patterns matched", val(domain.SourcePatterns, fmt.Sprintf("%d", r.Learning.PatternsMatched))),
		),
		t.section("Context",
			row("Tokens used", val(domain.SourceTokens, util.FormatTokens(r.Context.TokensUsed))),
			row("Compactions", val(domain.SourceTokens, fmt.Sprintf("%d", r.Context.Compactions))),
		),
	}
	if len(r.Unavailable) > 0 {
		blocks = append(blocks, st.Muted.Render("\nunavailable: "+strings.Join(r.Unavailable, ", ")))
	}
	return st.Card.Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

func (t *Terminal) skillList(shown []string, total int) string {
	if total == 0 {
		return "none"
	}
	out := strings.Join(shown, ", ")
	if extra := total - len(shown); extra > 0 {
		out += fmt.Sprintf(" (+%d more)", extra)
	}
	return out
}

func (t *Terminal) trend(tr domain.Trend) string {
	switch tr {
	case domain.TrendIncrease:
		return t.styles.Up.Render(tr.Symbol())
	case domain.TrendDecrease:
		return t.styles.Down.Render(tr.Symbol())
	default:
		return t.styles.Flat.Render(tr.Symbol())
	}
}
