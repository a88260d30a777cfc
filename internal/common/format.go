package common

import (
	"fmt"
	"math"

	"github.com/bobmcallan/vire-valuation/internal/models"
)

// NotAvailable is printed for missing values.
const NotAvailable = "n/a"

// FormatPct formats a fraction as a percentage with one decimal.
func FormatPct(n models.Num) string {
	if !n.Valid {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f%%", n.Value*100)
}

// FormatRate formats a fractional rate as a percentage.
func FormatRate(r float64) string {
	return FormatPct(models.Some(r))
}

// FormatNumber abbreviates large magnitudes with K, M, B or T and two decimals.
func FormatNumber(n models.Num) string {
	if !n.Valid {
		return NotAvailable
	}
	x := n.Value
	ax := math.Abs(x)
	switch {
	case ax >= 1e12:
		return fmt.Sprintf("%.2fT", x/1e12)
	case ax >= 1e9:
		return fmt.Sprintf("%.2fB", x/1e9)
	case ax >= 1e6:
		return fmt.Sprintf("%.2fM", x/1e6)
	case ax >= 1e3:
		return fmt.Sprintf("%.2fK", x/1e3)
	}
	return fmt.Sprintf("%.2f", x)
}

// FormatPrice prints a price with two decimals, or n/a.
func FormatPrice(n models.Num) string {
	if !n.Valid {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", n.Value)
}
