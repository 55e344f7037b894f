package mortgage

import (
	"errors"
	"fmt"
	"math"
)

// LoanTerms describes the financing applied to every listing of a search.
// Rate is the annual nominal rate as a fraction (0.0548 = 5.48%).
type LoanTerms struct {
	Rate        float64 `json:"mortgage_rate"`
	Years       int     `json:"mortgage_length"`
	DownPayment float64 `json:"down_payment"`
}

var (
	ErrNegativeRate     = errors.New("mortgage rate must be >= 0")
	ErrNonPositiveTerm  = errors.New("mortgage length must be > 0 years")
	ErrDownPaymentRange = errors.New("down payment must be within [0, 1]")
)

func (t LoanTerms) Validate() error {
	if t.Rate < 0 || math.IsNaN(t.Rate) || math.IsInf(t.Rate, 0) {
		return fmt.Errorf("%w: got %v", ErrNegativeRate, t.Rate)
	}
	if t.Years <= 0 {
		return fmt.Errorf("%w: got %d", ErrNonPositiveTerm, t.Years)
	}
	if t.DownPayment < 0 || t.DownPayment > 1 || math.IsNaN(t.DownPayment) {
		return fmt.Errorf("%w: got %v", ErrDownPaymentRange, t.DownPayment)
	}
	return nil
}

// Principal is the financed amount once the down payment is taken off.
func (t LoanTerms) Principal(price float64) float64 {
	return price * (1 - t.DownPayment)
}

// Payments is the number of monthly installments.
func (t LoanTerms) Payments() int { return t.Years * 12 }

// MonthlyPayment returns the fixed monthly installment of a fully amortizing loan.
// A zero rate is repaid in equal principal-only installments.
func MonthlyPayment(price float64, t LoanTerms) float64 {
	p := t.Principal(price)
	n := float64(t.Payments())
	r := t.Rate / 12
	if r == 0 {
		return p / n
	}
	growth := math.Pow(1+r, n)
	return p * (r * growth) / (growth - 1)
}

// Totals summarizes a loan over its whole term.
type Totals struct {
	Principal      float64 `json:"principal"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
}

func Schedule(price float64, t LoanTerms) Totals {
	monthly := MonthlyPayment(price, t)
	total := monthly * float64(t.Payments())
	p := t.Principal(price)
	return Totals{
		Principal:      p,
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  total - p,
	}
}
