package models

import "time"

// DateRangePreset identifies one of the selectable reporting windows.
type DateRangePreset int

const (
	// RangeThisMonth covers the first of the current month until now.
	RangeThisMonth DateRangePreset = iota
	// RangeToday covers midnight until now.
	RangeToday
	// RangeLastWeek covers the last 7 days.
	RangeLastWeek
	// RangeLast30Days covers the last 30 days.
	RangeLast30Days
	// RangeLastMonth covers the whole previous calendar month.
	RangeLastMonth

	rangePresetCount
)

// String returns the display name for a preset.
func (p DateRangePreset) String() string {
	switch p {
	case RangeThisMonth:
		return "This Month"
	case RangeToday:
		return "Today"
	case RangeLastWeek:
		return "Last 7 Days"
	case RangeLast30Days:
		return "Last 30 Days"
	case RangeLastMonth:
		return "Last Month"
	default:
		return "Unknown"
	}
}

// Slug returns the CLI identifier of the preset.
func (p DateRangePreset) Slug() string {
	switch p {
	case RangeThisMonth:
		return "this-month"
	case RangeToday:
		return "today"
	case RangeLastWeek:
		return "last-week"
	case RangeLast30Days:
		return "last-30-days"
	case RangeLastMonth:
		return "last-month"
	default:
		return "unknown"
	}
}

// Next cycles to the next preset.
func (p DateRangePreset) Next() DateRangePreset {
	return (p + 1) % rangePresetCount
}

// ParseDateRangePreset maps a slug back to its preset.
func ParseDateRangePreset(slug string) (DateRangePreset, bool) {
	for p := DateRangePreset(0); p < rangePresetCount; p++ {
		if p.Slug() == slug {
			return p, true
		}
	}
	return RangeLast30Days, false
}

// DateRangePresets returns all presets in display order.
func DateRangePresets() []DateRangePreset {
	presets := make([]DateRangePreset, 0, rangePresetCount)
	for p := DateRangePreset(0); p < rangePresetCount; p++ {
		presets = append(presets, p)
	}
	return presets
}

// DateRange is a resolved reporting window.
type DateRange struct {
	Start  time.Time
	End    time.Time
	Label  string
	Preset DateRangePreset
}

// Resolve computes the concrete window of the preset relative to now.
// Calendar boundaries are taken in now's location.
func (p DateRangePreset) Resolve(now time.Time) DateRange {
	loc := now.Location()
	y, m, d := now.Date()

	r := DateRange{Preset: p, Label: p.String(), End: now}

	switch p {
	case RangeThisMonth:
		r.Start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case RangeToday:
		r.Start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	case RangeLastWeek:
		r.Start = now.Add(-7 * 24 * time.Hour)
	case RangeLastMonth:
		r.Start = time.Date(y, m-1, 1, 0, 0, 0, 0, loc)
		// Day 0 of the current month is the last day of the previous one.
		r.End = time.Date(y, m, 0, 23, 59, 59, 0, loc)
	default:
		r.Start = now.Add(-30 * 24 * time.Hour)
	}

	return r
}

// StartDate returns the start formatted as YYYY-MM-DD.
func (r DateRange) StartDate() string {
	return r.Start.Format("2006-01-02")
}

// EndDate returns the end formatted as YYYY-MM-DD.
func (r DateRange) EndDate() string {
	return r.End.Format("2006-01-02")
}

// Describe renders the window for headers, collapsing single-day ranges.
func (r DateRange) Describe() string {
	if r.StartDate() == r.EndDate() {
		return r.Start.Format("Jan 2, 2006")
	}
	return r.Start.Format("Jan 2, 2006") + " - " + r.End.Format("Jan 2, 2006")
}
