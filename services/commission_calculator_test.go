package services

import (
	"testing"

	"github.com/craftclass/storefront-api/model"
)

func testCalculator() *CommissionCalculator {
	return NewCommissionCalculator(CommissionRates{Direct: 0.25, Referral: 0.10})
}

func TestCalculateNoSeller(t *testing.T) {
	order := &model.Order{ID: "ord-1", TotalCents: 3670}
	if entries := testCalculator().Calculate(order, nil, nil); len(entries) != 0 {
		t.Fatalf("unresolved code must produce no entries, got %d", len(entries))
	}
}

func TestCalculateDirectOnly(t *testing.T) {
	// Discounted order of $33.00 sold via instructor with no referrer
	order := &model.Order{ID: "ord-2", TotalCents: 3300}
	seller := &model.Instructor{ID: 7}

	entries := testCalculator().Calculate(order, seller, nil)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Type != model.CommissionDirect {
		t.Errorf("expected direct entry, got %s", e.Type)
	}
	if e.InstructorID != 7 {
		t.Errorf("expected instructor 7, got %d", e.InstructorID)
	}
	if e.CommissionAmountCents != 825 {
		t.Errorf("expected 25%% of $33.00 = 825 cents, got %d", e.CommissionAmountCents)
	}
	if e.OrderTotalCents != 3300 {
		t.Errorf("expected order total snapshot 3300, got %d", e.OrderTotalCents)
	}
	if e.OrderID == nil || *e.OrderID != "ord-2" {
		t.Error("direct entry must reference the order")
	}
}

func TestCalculateWithReferrer(t *testing.T) {
	order := &model.Order{ID: "ord-3", TotalCents: 3300}
	seller := &model.Instructor{ID: 7}
	referrer := &model.Instructor{ID: 3}

	entries := testCalculator().Calculate(order, seller, referrer)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	direct, ref := entries[0], entries[1]
	if direct.CommissionAmountCents != 825 {
		t.Errorf("expected direct amount 825, got %d", direct.CommissionAmountCents)
	}
	if ref.Type != model.CommissionReferral || ref.InstructorID != 3 {
		t.Errorf("expected referral entry for instructor 3, got %s for %d", ref.Type, ref.InstructorID)
	}
	if ref.CommissionAmountCents != 330 {
		t.Errorf("expected 10%% of $33.00 = 330 cents, got %d", ref.CommissionAmountCents)
	}

	// Both entries snapshot the same order total, the referral cut is never
	// computed against the seller's commission
	if direct.OrderTotalCents != 3300 || ref.OrderTotalCents != 3300 {
		t.Error("both entries must reference the order total")
	}
}

func TestCalculateDepthCap(t *testing.T) {
	// The referrer's own referrer never earns from this sale. The calculator
	// only ever sees one hop, so a chain Q <- R <- S yields entries for S
	// and R alone.
	order := &model.Order{ID: "ord-4", TotalCents: 10000}
	seller := &model.Instructor{ID: 7}
	grandReferrerID := uint(1)
	referrer := &model.Instructor{ID: 3, ReferredByInstructorID: &grandReferrerID}

	entries := testCalculator().Calculate(order, seller, referrer)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.InstructorID == grandReferrerID {
			t.Fatal("no entry may be created two hops up the chain")
		}
	}
}

func TestCommissionAmountRounding(t *testing.T) {
	cases := []struct {
		total int64
		rate  float64
		want  int64
	}{
		{3300, 0.25, 825},
		{3300, 0.10, 330},
		{3670, 0.25, 918}, // 917.5 rounds up
		{1, 0.25, 0},      // 0.25 rounds down
		{0, 0.25, 0},
		{99, 0.10, 10}, // 9.9 rounds up
	}

	for _, tc := range cases {
		if got := commissionAmount(tc.total, tc.rate); got != tc.want {
			t.Errorf("commissionAmount(%d, %v) = %d, want %d", tc.total, tc.rate, got, tc.want)
		}
	}
}
