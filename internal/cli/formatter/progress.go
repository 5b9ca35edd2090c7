package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/portfolio/internal/capacity"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderUtilization renders a bar like [████░░░░]  45%. The bar fill is
// clamped to 100% but the label keeps the real value, and the color follows
// the utilization level.
func RenderUtilization(p capacity.Percent, width int) string {
	if width < 2 {
		width = 2
	}
	filled := int(p.Display() / 100 * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return fmt.Sprintf("[%s] %4s", LevelStyle(p.Level()).Render(bar), p.String())
}

// RenderCompletion renders a completion rate (0-100) as a compact bar.
func RenderCompletion(rate, width int) string {
	if width < 2 {
		width = 2
	}
	rate = max(0, min(100, rate))
	filled := rate * width / 100
	style := StyleYellow
	if rate >= 100 {
		style = StyleGreen
	}
	return style.Render(strings.Repeat(filledBlock, filled)) + StyleDim.Render(strings.Repeat(emptyBlock, width-filled))
}
