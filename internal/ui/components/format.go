package components

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatCurrency renders d as US dollars with thousands separators,
// e.g. "$1,234.56" or "-$0.40".
func FormatCurrency(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	intPart := decimal.RequireFromString(whole).IntPart()

	return fmt.Sprintf("%s$%s.%s", sign, humanize.Comma(intPart), frac)
}

// FormatPercent renders a 0-100 share with one decimal place.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}
