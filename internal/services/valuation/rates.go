package valuation

import "github.com/bobmcallan/vire-valuation/internal/models"

// percentThreshold separates fractional rates from whole-number percentages.
const percentThreshold = 1.5

// NormalizeRate converts a whole-number percentage (10 meaning 10%) to a
// fraction. Values at or below 1.5 are already fractions.
func NormalizeRate(r models.Num) models.Num {
	if !r.Valid {
		return r
	}
	return models.Some(normalize(r.Value))
}

func normalize(r float64) float64 {
	if r > percentThreshold {
		return r / 100
	}
	return r
}
