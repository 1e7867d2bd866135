package services

import (
	"context"
	"sync"
	"testing"

	"github.com/craftclass/storefront-api/model"
	"github.com/google/uuid"
)

func TestLedgerRecordReturnsExistingRow(t *testing.T) {
	db, _, ledger := setupIntegration(t)
	ctx := context.Background()

	instructor := createInstructor(t, db, nil)
	orderID := "it-order-" + uuid.New().String()[:8]

	first := &model.CommissionEntry{
		OrderID:               &orderID,
		InstructorID:          instructor.ID,
		Type:                  model.CommissionDirect,
		OrderTotalCents:       3300,
		CommissionRate:        0.25,
		CommissionAmountCents: 825,
	}
	recorded, created, err := ledger.Record(ctx, first)
	if err != nil || !created {
		t.Fatalf("first record must create, got created=%v err=%v", created, err)
	}

	duplicate := &model.CommissionEntry{
		OrderID:               &orderID,
		InstructorID:          instructor.ID,
		Type:                  model.CommissionDirect,
		OrderTotalCents:       3300,
		CommissionRate:        0.25,
		CommissionAmountCents: 825,
	}
	again, created, err := ledger.Record(ctx, duplicate)
	if err != nil {
		t.Fatalf("duplicate record must not error: %v", err)
	}
	if created {
		t.Fatal("duplicate record must be a no-op")
	}
	if again.ID != recorded.ID {
		t.Errorf("duplicate record must return the existing row, got %s want %s", again.ID, recorded.ID)
	}
}

func TestLedgerRecordConcurrentDeliveries(t *testing.T) {
	db, _, ledger := setupIntegration(t)
	ctx := context.Background()

	instructor := createInstructor(t, db, nil)
	orderID := "it-order-" + uuid.New().String()[:8]

	// The unique index, not the application check, must close this race
	const deliveries = 8
	var wg sync.WaitGroup
	errs := make(chan error, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry := &model.CommissionEntry{
				OrderID:               &orderID,
				InstructorID:          instructor.ID,
				Type:                  model.CommissionDirect,
				OrderTotalCents:       3300,
				CommissionRate:        0.25,
				CommissionAmountCents: 825,
			}
			if _, _, err := ledger.Record(ctx, entry); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent record failed: %v", err)
	}

	var count int64
	err := db.Model(&model.CommissionEntry{}).
		Where("order_id = ? AND instructor_id = ? AND type = ?", orderID, instructor.ID, model.CommissionDirect).
		Count(&count).Error
	if err != nil {
		t.Fatalf("failed to count entries: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 entry after %d concurrent deliveries, got %d", deliveries, count)
	}
}

func TestLedgerRejectsInvalidEntries(t *testing.T) {
	_, _, ledger := setupIntegration(t)
	ctx := context.Background()
	orderID := "it-order-" + uuid.New().String()[:8]

	cases := []struct {
		name  string
		entry model.CommissionEntry
	}{
		{"unknown type", model.CommissionEntry{OrderID: &orderID, InstructorID: 1, Type: "cashback"}},
		{"direct without order", model.CommissionEntry{InstructorID: 1, Type: model.CommissionDirect}},
		{"bonus with order", model.CommissionEntry{OrderID: &orderID, InstructorID: 1, Type: model.CommissionReferralBonus}},
		{"negative amount", model.CommissionEntry{OrderID: &orderID, InstructorID: 1, Type: model.CommissionDirect, OrderTotalCents: 100, CommissionAmountCents: -5}},
		{"amount above total", model.CommissionEntry{OrderID: &orderID, InstructorID: 1, Type: model.CommissionDirect, OrderTotalCents: 100, CommissionAmountCents: 101}},
	}

	for _, tc := range cases {
		entry := tc.entry
		if _, _, err := ledger.Record(ctx, &entry); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestLedgerMarkPaidOutOnce(t *testing.T) {
	db, _, ledger := setupIntegration(t)
	ctx := context.Background()

	instructor := createInstructor(t, db, nil)
	orderID := "it-order-" + uuid.New().String()[:8]
	entry := &model.CommissionEntry{
		OrderID:               &orderID,
		InstructorID:          instructor.ID,
		Type:                  model.CommissionDirect,
		OrderTotalCents:       3300,
		CommissionRate:        0.25,
		CommissionAmountCents: 825,
	}
	recorded, _, err := ledger.Record(ctx, entry)
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	updated, err := ledger.MarkPaidOut(ctx, []string{recorded.ID})
	if err != nil || updated != 1 {
		t.Fatalf("expected 1 row marked paid out, got %d err=%v", updated, err)
	}

	// false -> true happens exactly once
	updated, err = ledger.MarkPaidOut(ctx, []string{recorded.ID})
	if err != nil {
		t.Fatalf("second payout call must not error: %v", err)
	}
	if updated != 0 {
		t.Errorf("already paid entries must be untouched, got %d updates", updated)
	}
}
