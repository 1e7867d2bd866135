package services

import (
	"math"

	"github.com/craftclass/storefront-api/model"
)

// CommissionRates are the configured per-type rates, snapshotted onto each
// ledger entry at calculation time.
type CommissionRates struct {
	Direct   float64
	Referral float64
}

// CommissionCalculator turns a settled order and its resolved instructor
// chain into the ledger entries to record. Pure computation, no I/O.
type CommissionCalculator struct {
	rates CommissionRates
}

// NewCommissionCalculator creates a calculator with the given rates.
func NewCommissionCalculator(rates CommissionRates) *CommissionCalculator {
	return &CommissionCalculator{rates: rates}
}

// Calculate produces the commission entries for a settled order.
//
// No resolved seller: no entries. Seller S: one direct entry at the direct
// rate. S referred by R: one additional referral entry for R, computed
// against the same order total, never against S's commission. The chain is
// strictly two-tier; R's own referrer earns nothing from S's sales.
func (c *CommissionCalculator) Calculate(order *model.Order, seller *model.Instructor, referrer *model.Instructor) []model.CommissionEntry {
	if seller == nil {
		return nil
	}

	entries := []model.CommissionEntry{
		{
			OrderID:               &order.ID,
			InstructorID:          seller.ID,
			Type:                  model.CommissionDirect,
			OrderTotalCents:       order.TotalCents,
			CommissionRate:        c.rates.Direct,
			CommissionAmountCents: commissionAmount(order.TotalCents, c.rates.Direct),
		},
	}

	if referrer != nil {
		entries = append(entries, model.CommissionEntry{
			OrderID:               &order.ID,
			InstructorID:          referrer.ID,
			Type:                  model.CommissionReferral,
			OrderTotalCents:       order.TotalCents,
			CommissionRate:        c.rates.Referral,
			CommissionAmountCents: commissionAmount(order.TotalCents, c.rates.Referral),
		})
	}

	return entries
}

// commissionAmount rounds to currency minor units. Rates live in [0,1], so
// the result is non-negative and never exceeds the order total.
func commissionAmount(totalCents int64, rate float64) int64 {
	return int64(math.Round(float64(totalCents) * rate))
}
