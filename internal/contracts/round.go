package contracts

import "math"

// Round3 rounds to 3 decimal places. Prices, moving averages and premium
// percentages are rounded at this precision before display and before
// rule comparison.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Round2 rounds to 2 decimal places. Profit percentages use this.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
