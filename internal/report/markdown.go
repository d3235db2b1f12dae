// Package report renders weekly summaries and daily records.
package report

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/util"
)

// FileName is the report file name for a generation date.
func FileName(generated time.Time) string {
	return "weekly-" + domain.FormatDate(generated) + ".md"
}

var funcs = template.FuncMap{
	"date":    domain.FormatDate,
	"dec":     util.FormatDecimal,
	"pct":     util.FormatPercent,
	"tokens":  util.FormatTokens,
	"symbol":  func(t domain.Trend) string { return t.Symbol() },
	"stamp":   func(t time.Time) string { return t.Format("2006-01-02 15:04:05 MST") },
	"hidden":  func(s *domain.WeeklySummary) int { return len(s.Skills) - len(s.TopSkills) },
	"trendOf": formatTrendValue,
}

func formatTrendValue(metric string, v float64) string {
	switch metric {
	case "Tokens used":
		return util.FormatTokens(int64(v))
	case "Test coverage":
		return util.FormatPercent(v)
	}
	return util.FormatDecimal(v)
}

const markdownTemplate = `# Weekly Development Metrics

**Period:** {{date .Period.Start}} to {{date .Period.End}}
**Days tracked:** {{.DaysCount}} of {{.Period.Len}}

## Productivity

| Metric | Total | Daily average |
|--------|------:|--------------:|
| Features completed | {{.Totals.FeaturesCompleted}} | {{dec .Averages.FeaturesCompleted}} |
| Commits | {{.Totals.Commits}} | {{dec .Averages.Commits}} |
| PRs merged | {{.Totals.PRsMerged}} | {{dec .Averages.PRsMerged}} |

## Quality

| Metric | Value |
|--------|------:|
| Average test coverage | {{pct .Averages.TestCoverage}} |
| Average review score | {{dec .Averages.ReviewScore}} / 10 |
| Bugs found | {{.Totals.BugsFound}} |

## Learning

**Skills invoked:** {{len .Skills}} unique
{{range .TopSkills}}
- {{.}}{{end}}{{if gt (hidden .) 0}}
- ...and {{hidden .}} more{{end}}

**Patterns matched:** {{.Totals.PatternsMatched}}

## Context Usage

| Metric | Total | Daily average |
|--------|------:|--------------:|
| Tokens used | {{tokens .Totals.TokensUsed}} | {{tokens .Averages.TokensUsed}} |
| Compactions | {{.Totals.Compactions}} | {{dec .Averages.Compactions}} |
{{if .Trends}}
## Trends vs Previous Period

| Metric | Previous | Current | Trend |
|--------|---------:|--------:|:-----:|
{{range .Trends}}| {{.Metric}} | {{trendOf .Metric .Previous}} | {{trendOf .Metric .Current}} | {{symbol .Trend}} |
{{end}}{{end}}
## Recommendations
{{range .Recommendations}}
- {{.}}{{end}}

---
*Generated {{stamp .GeneratedAt}}*
`

var markdown = template.Must(template.New("weekly").Funcs(funcs).Parse(markdownTemplate))

// Markdown renders a summary as the weekly report document.
func Markdown(s *domain.WeeklySummary) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("nil summary")
	}
	var buf bytes.Buffer
	if err := markdown.Execute(&buf, s); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}
