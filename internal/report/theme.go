package report

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	purple       = lipgloss.Color("#A855F7")
	brightPurple = lipgloss.Color("#C084FC")
	white        = lipgloss.Color("#FFFFFF")
	lightGray    = lipgloss.Color("#9CA3AF")
	dimGray      = lipgloss.Color("#6B7280")
	darkGray     = lipgloss.Color("#374151")
	green        = lipgloss.Color("#22C55E")
	amber        = lipgloss.Color("#F59E0B")
	red          = lipgloss.Color("#EF4444")
)

// Styles are the terminal styles of the report renderer.
type Styles struct {
	Title    lipgloss.Style
	Section  lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Card     lipgloss.Style
	Up       lipgloss.Style
	Down     lipgloss.Style
	Flat     lipgloss.Style
	Advice   lipgloss.Style
	Positive lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// DefaultStyles returns the shared styles.
func DefaultStyles() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(white),

		Section: lipgloss.NewStyle().
			Foreground(purple).
			Bold(true).
			MarginTop(1),

		Label: lipgloss.NewStyle().
			Foreground(lightGray).
			Width(22),

		Value: lipgloss.NewStyle().
			Foreground(brightPurple).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(dimGray),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(darkGray).
			Padding(0, 2),

		Up:       lipgloss.NewStyle().Foreground(green),
		Down:     lipgloss.NewStyle().Foreground(red),
		Flat:     lipgloss.NewStyle().Foreground(dimGray),
		Advice:   lipgloss.NewStyle().Foreground(amber),
		Positive: lipgloss.NewStyle().Foreground(green),
	}
}
