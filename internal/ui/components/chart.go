// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/openai-costs-tui/internal/ui/styles"
	"github.com/j-veylop/openai-costs-tui/internal/usage"
)

const chartDateLayout = "2006-01-02"

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	width = max(width, 20)
	height = max(height, 3)

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Green),
		asciigraph.Caption(caption),
	)
}

// DailySeries expands sparse per-day costs into one value per calendar day
// between the first and last date present. Missing days are zero.
func DailySeries(points map[string]decimal.Decimal) []float64 {
	if len(points) == 0 {
		return nil
	}

	var first, last time.Time
	for date := range points {
		t, err := time.Parse(chartDateLayout, date)
		if err != nil {
			continue
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if last.IsZero() || t.After(last) {
			last = t
		}
	}
	if first.IsZero() {
		return nil
	}

	var series []float64
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		series = append(series, points[d.Format(chartDateLayout)].InexactFloat64())
	}
	return series
}

// RenderDailyTotalsChart plots the organization's cost per day.
func RenderDailyTotalsChart(totals []usage.DailyTotal, width, height int) string {
	points := make(map[string]decimal.Decimal, len(totals))
	for _, t := range totals {
		points[t.Date] = t.Cost
	}
	return RenderLineChart(DailySeries(points), width, height, chartCaption("Daily cost (USD)", points))
}

// RenderProjectDailyChart plots one project's cost per day.
func RenderProjectDailyChart(days []usage.DailyProjectCost, width, height int) string {
	points := make(map[string]decimal.Decimal, len(days))
	for _, d := range days {
		points[d.Date] = d.TotalCost
	}
	return RenderLineChart(DailySeries(points), width, height, chartCaption("Daily cost (USD)", points))
}

func chartCaption(title string, points map[string]decimal.Decimal) string {
	var first, last string
	for date := range points {
		if first == "" || date < first {
			first = date
		}
		if date > last {
			last = date
		}
	}
	if first == "" || first == last {
		return fmt.Sprintf("%s %s", title, first)
	}
	return fmt.Sprintf("%s %s to %s", title, first, last)
}

// BarItem is one row of a horizontal bar chart.
type BarItem struct {
	Label string
	Value decimal.Decimal
}

var barStyle = lipgloss.NewStyle().Foreground(styles.Primary)

// RenderBarChart creates a simple horizontal bar chart scaled to the largest value.
func RenderBarChart(items []BarItem, width int) string {
	if len(items) == 0 {
		return ""
	}

	// Find max value for scaling
	maxVal := decimal.Zero
	maxLabelLen := 0
	for _, it := range items {
		if it.Value.GreaterThan(maxVal) {
			maxVal = it.Value
		}
		maxLabelLen = max(maxLabelLen, len(it.Label))
	}
	if maxVal.IsZero() {
		maxVal = decimal.NewFromInt(1)
	}

	barWidth := max(width-maxLabelLen-14, 10) // Leave room for label and value

	lines := make([]string, 0, len(items))
	for _, it := range items {
		barLen := int(it.Value.Div(maxVal).InexactFloat64() * float64(barWidth))
		barLen = max(barLen, 0)

		bar := barStyle.Render(strings.Repeat("█", barLen))
		lines = append(lines, fmt.Sprintf("%*s │%s %s", maxLabelLen, it.Label, bar, FormatCurrency(it.Value)))
	}
	return strings.Join(lines, "\n")
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	// Find max value
	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}
