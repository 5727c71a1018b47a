// Package settlement derives the financial summary of an order from its
// declared totals and recorded payments. The computation is pure: no I/O,
// no shared state, safe to run concurrently for different orders.
package settlement

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lumapos/backoffice/internal/domain"
)

// ErrInvalidOrderData marks an order whose final_total is absent,
// non-numeric, or negative. The computation produces no partial result in
// that case; callers must surface the failure rather than render a wrong
// total.
var ErrInvalidOrderData = errors.New("invalid order data")

// clampTolerance absorbs rounding residue from upstream per-line discount
// and tax computation. Residues of a few cents are noise, not real
// outstanding balances; genuine partial payments in this domain always
// exceed it.
var clampTolerance = decimal.New(5, -2) // 0.05

// Money is a settled monetary value. Its string and JSON forms always carry
// two decimal places: decimal's own formatting trims trailing zeros, which
// would break the currency display convention used throughout the system
// (30.00 must render as "30.00", not "30").
type Money struct {
	decimal.Decimal
}

func money(d decimal.Decimal) Money {
	return Money{d.Round(2)}
}

func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.StringFixed(2))
}

// Settlement is the derived summary of one order. It is recomputed on every
// read and never persisted.
type Settlement struct {
	TotalPaid   Money              `json:"total_paid"`
	Outstanding Money              `json:"outstanding"`
	Status      domain.OrderStatus `json:"status"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// Compute reconciles an order's recorded payments against its final total.
//
// Payment amounts are summed with exact decimal arithmetic; a malformed
// payment record (non-numeric or negative amount) is excluded from the sum
// and reported in Warnings rather than failing the whole order. TotalPaid
// and Outstanding are rounded half-away-from-zero to 2 decimal places, and
// an Outstanding within the clamp tolerance of zero is snapped to exactly
// zero.
//
// Status is a pass-through projection of order.StatusID. It is never
// reconciled against the amounts: both are owned upstream and can disagree.
func Compute(order domain.Order, payments []domain.Payment) (*Settlement, error) {
	if !order.FinalTotal.IsPresent() {
		return nil, fmt.Errorf("%w: order %d has no final_total", ErrInvalidOrderData, order.ID)
	}
	finalTotal, err := order.FinalTotal.Decimal()
	if err != nil {
		return nil, fmt.Errorf("%w: order %d final_total %q is not numeric",
			ErrInvalidOrderData, order.ID, string(order.FinalTotal))
	}
	if finalTotal.IsNegative() {
		return nil, fmt.Errorf("%w: order %d final_total %s is negative",
			ErrInvalidOrderData, order.ID, finalTotal)
	}

	rawPaid := decimal.Zero
	var warnings []string
	for _, p := range payments {
		amt, err := p.Amount.Decimal()
		if err != nil || amt.IsNegative() {
			warnings = append(warnings, fmt.Sprintf("skipped malformed payment %d", p.ID))
			continue
		}
		rawPaid = rawPaid.Add(amt)
	}

	outstanding := finalTotal.Sub(rawPaid).Round(2)
	if outstanding.Abs().LessThanOrEqual(clampTolerance) {
		outstanding = decimal.Zero
	}

	return &Settlement{
		TotalPaid:   money(rawPaid),
		Outstanding: money(outstanding),
		Status:      domain.StatusFromID(order.StatusID),
		Warnings:    warnings,
	}, nil
}
