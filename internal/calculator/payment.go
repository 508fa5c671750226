// Package calculator holds the pure money math for Split Pay: per-person
// shares and payment progress. It never mutates a Split.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/splitpay/splitpay/internal/models"
)

// PaymentStatus is the derived collection progress of a split. It is
// computed on demand and never stored.
type PaymentStatus struct {
	// Collected is paid-count x per-person amount.
	Collected decimal.Decimal `json:"collected"`

	// Remaining is total - collected.
	Remaining decimal.Decimal `json:"remaining"`

	// Percent is collected / total x 100. Zero when total is zero,
	// which creation-time validation makes unreachable in practice.
	Percent decimal.Decimal `json:"percent"`

	// PaidCount is how many participants have paid.
	PaidCount int `json:"paidCount"`
}

// PerPersonAmount divides total evenly across participants. Division is
// exact decimal division; rounding is a presentation concern and never
// happens here.
func PerPersonAmount(total decimal.Decimal, participants int) (decimal.Decimal, error) {
	if participants <= 0 {
		return decimal.Zero, fmt.Errorf("participants must be positive, got %d", participants)
	}
	if !total.IsPositive() {
		return decimal.Zero, fmt.Errorf("total must be positive, got %s", total)
	}
	return total.Div(decimal.NewFromInt(int64(participants))), nil
}

// Progress computes the payment status of a split from its participant
// list and stored per-person amount.
func Progress(s *models.Split) PaymentStatus {
	paid := s.PaidCount()
	collected := s.AmountPerPerson.Mul(decimal.NewFromInt(int64(paid)))

	status := PaymentStatus{
		Collected: collected,
		Remaining: s.TotalAmount.Sub(collected),
		Percent:   decimal.Zero,
		PaidCount: paid,
	}
	if s.TotalAmount.IsPositive() {
		status.Percent = collected.Div(s.TotalAmount).Mul(decimal.NewFromInt(100))
	}
	return status
}
