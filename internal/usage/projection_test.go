package usage

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/openai-costs-tui/internal/models"
)

func TestProjectMonthEnd(t *testing.T) {
	now := time.Date(2024, 4, 11, 0, 0, 0, 0, time.UTC)
	r := models.RangeThisMonth.Resolve(now)
	u := New(page(
		bucket(time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), result("p1", models.StringPtr("gpt-4o"), "40")),
		bucket(time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC), result("p1", models.StringPtr("gpt-4o"), "60")),
	))

	tests := []struct {
		name      string
		threshold string
		want      ProjectionStatus
	}{
		{"disabled", "0", ProjectionUnknown},
		{"safe", "500", ProjectionSafe},
		{"warning", "250", ProjectionWarning},
		{"critical", "80", ProjectionCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ProjectMonthEnd(u, r, dec(tt.threshold))
			if !ok {
				t.Fatal("expected a projection")
			}
			if p.Status != tt.want {
				t.Errorf("Status = %s, want %s", p.Status, tt.want)
			}
			if !p.DailyRate.Equal(dec("10")) {
				t.Errorf("DailyRate = %s, want 10", p.DailyRate)
			}
			if !p.Projected.Equal(dec("300")) {
				t.Errorf("Projected = %s, want 300", p.Projected)
			}
			if p.DaysLeft != 20 {
				t.Errorf("DaysLeft = %d, want 20", p.DaysLeft)
			}
			if p.Confidence != "low" || p.DataPoints != 2 {
				t.Errorf("Confidence = %s with %d points", p.Confidence, p.DataPoints)
			}
		})
	}
}

func TestProjectMonthEnd_FirstDay(t *testing.T) {
	now := time.Date(2024, 4, 1, 6, 0, 0, 0, time.UTC)
	u := New(page(bucket(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), result("p1", nil, "5"))))

	p, ok := ProjectMonthEnd(u, models.RangeThisMonth.Resolve(now), decimal.Zero)
	if !ok {
		t.Fatal("expected a projection")
	}
	// Less than a day elapsed counts as one full day.
	if !p.Projected.Equal(dec("150")) {
		t.Errorf("Projected = %s, want 150", p.Projected)
	}
}

func TestProjectMonthEnd_OtherPresets(t *testing.T) {
	now := time.Date(2024, 4, 11, 0, 0, 0, 0, time.UTC)
	u := New(page())
	for _, preset := range []models.DateRangePreset{models.RangeToday, models.RangeLastWeek, models.RangeLastMonth} {
		if _, ok := ProjectMonthEnd(u, preset.Resolve(now), decimal.Zero); ok {
			t.Errorf("%s should not be projected", preset)
		}
	}
	if _, ok := ProjectMonthEnd(nil, models.RangeThisMonth.Resolve(now), decimal.Zero); ok {
		t.Error("nil usage should not be projected")
	}
}

func TestProjectionStatus_String(t *testing.T) {
	if ProjectionWarning.String() != "WARNING" || ProjectionStatus(99).String() != "UNKNOWN" {
		t.Error("unexpected status names")
	}
}
