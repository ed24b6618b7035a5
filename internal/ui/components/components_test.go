package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/openai-costs-tui/internal/usage"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"1.5", "$1.50"},
		{"1234.567", "$1,234.57"},
		{"1000000", "$1,000,000.00"},
		{"-0.4", "-$0.40"},
		{"-0.001", "$0.00"},
		{"0.005", "$0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatCurrency(decimal.RequireFromString(tt.in)); got != tt.want {
				t.Errorf("FormatCurrency(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(12.345); got != "12.3%" {
		t.Errorf("FormatPercent() = %q", got)
	}
	if got := FormatCount(12345); got != "12,345" {
		t.Errorf("FormatCount() = %q", got)
	}
}

func TestSpinner_Methods(t *testing.T) {
	s := NewSpinner("Init")

	s.SetLabel("Loading")
	if s.Label() != "Loading" {
		t.Errorf("Label = %s, want Loading", s.Label())
	}
	if !strings.Contains(s.ViewWithLabel(), "Loading") {
		t.Error("ViewWithLabel should include the label")
	}

	_, cmd := s.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Update should return command for tick")
	}
	if s.Tick() == nil {
		t.Error("Tick should return command")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	view := RenderSpinnerCentered(NewSpinner("Loading..."), 20, 5)
	if lipgloss.Height(view) != 5 {
		t.Errorf("height = %d, want 5", lipgloss.Height(view))
	}
}

func TestDailySeries(t *testing.T) {
	points := map[string]decimal.Decimal{
		"2024-03-01": decimal.NewFromInt(2),
		"2024-03-04": decimal.NewFromInt(5),
	}

	got := DailySeries(points)
	want := []float64{2, 0, 0, 5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("series[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if DailySeries(nil) != nil {
		t.Error("empty input should yield nil")
	}
}

func TestRenderDailyTotalsChart(t *testing.T) {
	totals := []usage.DailyTotal{
		{Date: "2024-03-01", Cost: decimal.NewFromInt(3)},
		{Date: "2024-03-02", Cost: decimal.NewFromInt(7)},
	}

	chart := RenderDailyTotalsChart(totals, 40, 5)
	if !strings.Contains(chart, "2024-03-01 to 2024-03-02") {
		t.Errorf("chart caption missing:\n%s", chart)
	}

	if !strings.Contains(RenderDailyTotalsChart(nil, 40, 5), "No data available") {
		t.Error("empty chart should say so")
	}
}

func TestRenderProjectDailyChart(t *testing.T) {
	days := []usage.DailyProjectCost{{Date: "2024-03-05", TotalCost: decimal.NewFromInt(1)}}
	if chart := RenderProjectDailyChart(days, 30, 4); !strings.Contains(chart, "2024-03-05") {
		t.Errorf("chart caption missing:\n%s", chart)
	}
}

func TestRenderBarChart(t *testing.T) {
	s := RenderBarChart([]BarItem{
		{Label: "gpt-4o", Value: decimal.NewFromInt(10)},
		{Label: "o1", Value: decimal.NewFromInt(5)},
	}, 40)
	if strings.Count(s, "\n") != 1 {
		t.Errorf("expected two lines:\n%s", s)
	}
	if !strings.Contains(s, "$10.00") {
		t.Error("bar chart should show amounts")
	}
	if RenderBarChart(nil, 40) != "" {
		t.Error("empty input should render nothing")
	}
}

func TestRenderSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   int
	}{
		{"empty", nil, 10, 0},
		{"fits", []float64{1, 2, 3}, 10, 3},
		{"sampled", []float64{1, 2, 3, 4, 5, 6, 7, 8}, 4, 4},
		{"zero width", []float64{1}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len([]rune(RenderSparkline(tt.values, tt.width))); got != tt.want {
				t.Errorf("runes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestShareBar_View(t *testing.T) {
	bar := NewShareBar(12)
	view := bar.View("gpt-4o", decimal.RequireFromString("12.5"), 25, 60)

	for _, want := range []string{"gpt-4o", "25.0%", "$12.50"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestSimpleShareBar(t *testing.T) {
	if !strings.Contains(SimpleShareBar(50, 20), "50.0%") {
		t.Error("SimpleShareBar should contain percentage")
	}
	if RenderGradientBar(50, 0) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a-very-long-model-name", 6, "a-ver…"},
		{"x", 0, "x"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestInterpolateColor(t *testing.T) {
	if got := interpolateColor("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("t=0 gave %s", got)
	}
	if got := interpolateColor("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("t=1 gave %s", got)
	}
	if got := hexToRGB("zz"); got != [3]int{} {
		t.Errorf("bad hex gave %v", got)
	}
}
