package formatter

import (
	"fmt"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(title) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// RelativeETA describes a YYYY-MM-DD date against today: "today",
// "in 3d", "5d overdue". Unparseable or empty dates render as "-".
func RelativeETA(eta string, today time.Time) string {
	due, err := time.Parse(domain.DateLayout, eta)
	if err != nil {
		return "-"
	}
	ref, _ := time.Parse(domain.DateLayout, today.Format(domain.DateLayout))
	days := int(due.Sub(ref).Hours() / 24)

	switch {
	case days == 0:
		return "today"
	case days > 0:
		return fmt.Sprintf("in %dd", days)
	default:
		return fmt.Sprintf("%dd overdue", -days)
	}
}

// ETAStyled colors RelativeETA by urgency. Terminal statuses are never
// urgent.
func ETAStyled(eta string, status domain.Status, today time.Time) string {
	text := RelativeETA(eta, today)
	if text == "-" || status.IsTerminal() {
		return StyleDim.Render(text)
	}
	due, _ := time.Parse(domain.DateLayout, eta)
	switch days := due.Sub(today).Hours() / 24; {
	case days < 0:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
