// Package payment confirms that a customer paid before any order is placed.
package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrCancelled      = errors.New("payment was cancelled")
	ErrDeclined       = errors.New("payment was declined")
	ErrAmountMismatch = errors.New("paid amount does not match the order total")
)

// Request describes what the customer is expected to have paid.
type Request struct {
	Email     string
	Amount    decimal.Decimal
	Currency  string
	Reference string
}

// Gate yields the confirmed payment reference, or an error when the payment
// cannot be trusted. No order may be submitted without a reference.
type Gate interface {
	Confirm(ctx context.Context, req Request) (string, error)
}

// ReferenceGate trusts any non-empty reference. Development only.
type ReferenceGate struct{}

func (ReferenceGate) Confirm(_ context.Context, req Request) (string, error) {
	ref := strings.TrimSpace(req.Reference)
	if ref == "" {
		return "", ErrCancelled
	}
	return ref, nil
}

// MinorUnits converts an amount to the smallest currency unit (kobo, cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
