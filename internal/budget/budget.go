// Package budget turns gross income into the monthly housing spend a buyer can carry.
package budget

const (
	// TakeHomeRatio approximates net pay after income taxes.
	TakeHomeRatio = 0.75
	// HousingRatio caps housing at 30% of net monthly income.
	HousingRatio = 0.30
)

// MonthlyCeiling returns the maximum monthly housing payment for a gross annual income.
func MonthlyCeiling(annualIncome float64) float64 {
	return annualIncome * TakeHomeRatio / 12 * HousingRatio
}
