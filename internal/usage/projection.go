package usage

import (
	"github.com/shopspring/decimal"

	"github.com/j-veylop/openai-costs-tui/internal/models"
)

// ProjectionStatus grades a projected total against the alert threshold.
type ProjectionStatus int

const (
	// ProjectionUnknown means no threshold is configured.
	ProjectionUnknown ProjectionStatus = iota
	// ProjectionSafe means the month should end under the threshold.
	ProjectionSafe
	// ProjectionWarning means the run rate crosses the threshold before month end.
	ProjectionWarning
	// ProjectionCritical means the threshold is already crossed.
	ProjectionCritical
)

func (s ProjectionStatus) String() string {
	switch s {
	case ProjectionSafe:
		return "SAFE"
	case ProjectionWarning:
		return "WARNING"
	case ProjectionCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

const (
	lowConfidenceDays    = 3
	mediumConfidenceDays = 10
)

// Projection extrapolates month-to-date spend to the end of the month.
type Projection struct {
	Spent      decimal.Decimal
	DailyRate  decimal.Decimal
	Projected  decimal.Decimal
	Threshold  decimal.Decimal
	Confidence string
	Status     ProjectionStatus
	DaysLeft   int
	DataPoints int
}

// ProjectMonthEnd projects u, loaded for r, to the end of r's month at the
// month-to-date daily rate. It only applies to the this-month preset.
// A threshold of zero or less disables the status grading.
func ProjectMonthEnd(u *Usage, r models.DateRange, threshold decimal.Decimal) (Projection, bool) {
	if u == nil || r.Preset != models.RangeThisMonth {
		return Projection{}, false
	}

	monthEnd := r.Start.AddDate(0, 1, 0)
	elapsed := max(r.End.Sub(r.Start).Hours()/24, 1)
	monthDays := monthEnd.Sub(r.Start).Hours() / 24

	spent := u.TotalCost()
	rate := spent.Div(decimal.NewFromFloat(elapsed))

	p := Projection{
		Spent:      spent,
		DailyRate:  rate.Round(2),
		Projected:  decimal.Max(spent, rate.Mul(decimal.NewFromFloat(monthDays))).Round(2),
		Threshold:  threshold,
		DaysLeft:   max(int(monthEnd.Sub(r.End).Hours()/24), 0),
		DataPoints: len(u.AllDates()),
	}

	switch {
	case p.DataPoints < lowConfidenceDays:
		p.Confidence = "low"
	case p.DataPoints < mediumConfidenceDays:
		p.Confidence = "medium"
	default:
		p.Confidence = "high"
	}

	switch {
	case !threshold.IsPositive():
		p.Status = ProjectionUnknown
	case spent.GreaterThanOrEqual(threshold):
		p.Status = ProjectionCritical
	case p.Projected.GreaterThanOrEqual(threshold):
		p.Status = ProjectionWarning
	default:
		p.Status = ProjectionSafe
	}

	return p, true
}
