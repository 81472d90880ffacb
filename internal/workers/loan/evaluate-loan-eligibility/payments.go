// internal/workers/loan/evaluate-loan-eligibility/payments.go
package evaluateloaneligibility

import (
	"errors"
	"math"
)

var ErrInvalidTerm = errors.New("PAYMENT_TERM_INVALID")

// monthlyPayment computes the standard amortized installment. A zero
// rate degenerates to straight division.
func monthlyPayment(principal float64, months int, annualRate float64) (float64, error) {
	if months <= 0 {
		return 0, ErrInvalidTerm
	}

	r := annualRate / 12
	if r == 0 {
		return round2(principal / float64(months)), nil
	}

	n := float64(months)
	factor := math.Pow(1+r, n)
	payment := principal * r * factor / (factor - 1)
	return round2(payment), nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
