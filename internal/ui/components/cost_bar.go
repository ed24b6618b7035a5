package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/openai-costs-tui/internal/logger"
	"github.com/j-veylop/openai-costs-tui/internal/ui/styles"
)

const (
	shareFromColor = "#51cf66"
	shareToColor   = "#ff6b6b"
)

// ShareBar renders one item's share of a total as a labelled bar.
type ShareBar struct {
	progress   progress.Model
	labelWidth int
}

// NewShareBar creates a share bar whose label column is labelWidth wide.
func NewShareBar(labelWidth int) ShareBar {
	p := progress.New(
		progress.WithScaledGradient(shareFromColor, shareToColor),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	return ShareBar{
		progress:   p,
		labelWidth: max(labelWidth, 8),
	}
}

// View renders "label [bar] 12.3%  $1.23" within width columns.
func (s ShareBar) View(label string, amount decimal.Decimal, percent float64, width int) string {
	const (
		percentWidth = 7
		amountWidth  = 14
	)

	barWidth := max(width-s.labelWidth-percentWidth-amountWidth-3, 10)
	s.progress.Width = barWidth

	bar := s.progress.ViewAs(min(max(percent, 0), 100) / 100)

	labelStr := styles.ProgressLabelStyle.Width(s.labelWidth).Render(truncate(label, s.labelWidth-1))
	percentStr := styles.GetShareStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(FormatPercent(percent))
	amountStr := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(amountWidth).
		Align(lipgloss.Right).
		Render(FormatCurrency(amount))

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr, " ", amountStr)
}

// RenderGradientBar renders just the bar part with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	filled = min(max(filled, 0), width)

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(shareFromColor, shareToColor, t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

// SimpleShareBar renders a compact "[bar] 12.3%" without the progress model.
func SimpleShareBar(percent float64, width int) string {
	const percentWidth = 7
	barWidth := max(width-percentWidth-3, 5)

	percentStr := styles.GetShareStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(FormatPercent(percent))

	return fmt.Sprintf("[%s] %s", RenderGradientBar(percent, barWidth), percentStr)
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:max(width-1, 0)]
	}
	return string(r) + "…"
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
