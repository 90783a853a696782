package projection

import "time"

// seasonalFactors holds the fixed monthly demand multipliers. March is the
// 1.0 baseline, December the 1.3 peak; all values stay within 0.9-1.3.
var seasonalFactors = map[time.Month]float64{
	time.January:   0.9,
	time.February:  0.95,
	time.March:     1.0,
	time.April:     1.0,
	time.May:       1.05,
	time.June:      1.1,
	time.July:      1.2,
	time.August:    1.15,
	time.September: 1.0,
	time.October:   1.05,
	time.November:  1.15,
	time.December:  1.3,
}

// SeasonalFactor returns the demand multiplier for a calendar month.
func SeasonalFactor(month time.Month) float64 {
	if factor, ok := seasonalFactors[month]; ok {
		return factor
	}

	return 1.0
}
