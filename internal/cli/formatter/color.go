package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/portfolio/internal/capacity"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// DisableColor switches every style to plain text. Call it when output is
// not a terminal.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// StatusStyle maps the six-state lifecycle onto the palette.
func StatusStyle(s domain.Status) lipgloss.Style {
	switch s {
	case domain.StatusDone:
		return StyleGreen
	case domain.StatusInProgress:
		return StyleBlue
	case domain.StatusAtRisk:
		return StyleRed
	case domain.StatusObsolete, domain.StatusDeleted:
		return StyleDim
	default:
		return StyleFg
	}
}

// StatusBadge returns a colored indicator such as "● AT RISK".
func StatusBadge(s domain.Status) string {
	label := strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
	return StatusStyle(s).Render("● " + label)
}

func LevelStyle(l capacity.Level) lipgloss.Style {
	switch l {
	case capacity.LevelOver:
		return StyleRed
	case capacity.LevelWarning:
		return StyleYellow
	default:
		return StyleGreen
	}
}

func PriorityStyle(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityP0:
		return StyleRed
	case domain.PriorityP1:
		return StyleYellow
	default:
		return StyleFg
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
