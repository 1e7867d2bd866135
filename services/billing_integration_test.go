package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/craftclass/storefront-api/model"
	"gorm.io/gorm"
)

func setStatus(t *testing.T, db *gorm.DB, id uint, status model.SubscriptionStatus) {
	t.Helper()

	err := db.Model(&model.Instructor{}).Where("id = ?", id).
		Update("subscription_status", status).Error
	if err != nil {
		t.Fatalf("failed to set status: %v", err)
	}
}

func reloadInstructor(t *testing.T, db *gorm.DB, id uint) *model.Instructor {
	t.Helper()

	var instructor model.Instructor
	if err := db.First(&instructor, id).Error; err != nil {
		t.Fatalf("failed to reload instructor: %v", err)
	}
	return &instructor
}

func TestActivateStartsCycleFromPending(t *testing.T) {
	db, _, _ := setupIntegration(t)
	ctx := context.Background()
	billing := NewBillingService(db, NewNotifierService(db, ""), 30*24*time.Hour)

	instructor := createInstructor(t, db, nil)
	setStatus(t, db, instructor.ID, model.SubscriptionPending)

	if err := billing.Activate(ctx, instructor.ID, time.Now()); err != nil {
		t.Fatalf("activation from pending failed: %v", err)
	}

	activated := reloadInstructor(t, db, instructor.ID)
	if activated.SubscriptionStatus != model.SubscriptionActive {
		t.Errorf("expected active status, got %s", activated.SubscriptionStatus)
	}
	if activated.LastRenewedAt == nil || activated.NextBillingDate == nil {
		t.Error("activation must start the billing cycle")
	}
}

func TestActivateDuplicateDeliveryIsNoOp(t *testing.T) {
	db, _, _ := setupIntegration(t)
	ctx := context.Background()
	billing := NewBillingService(db, NewNotifierService(db, ""), 30*24*time.Hour)

	instructor := createInstructor(t, db, nil)
	setStatus(t, db, instructor.ID, model.SubscriptionPending)

	if err := billing.Activate(ctx, instructor.ID, time.Now()); err != nil {
		t.Fatalf("activation failed: %v", err)
	}
	first := reloadInstructor(t, db, instructor.ID)

	if err := billing.Activate(ctx, instructor.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("duplicate activation must succeed silently: %v", err)
	}
	second := reloadInstructor(t, db, instructor.ID)

	if !second.LastRenewedAt.Equal(*first.LastRenewedAt) {
		t.Error("duplicate activation must not restart the billing cycle")
	}
}

// Redelivered registration events must not undo an admin decision: only a
// pending instructor activates.
func TestActivateDoesNotReviveDeactivated(t *testing.T) {
	db, _, _ := setupIntegration(t)
	ctx := context.Background()
	billing := NewBillingService(db, NewNotifierService(db, ""), 30*24*time.Hour)

	for _, status := range []model.SubscriptionStatus{model.SubscriptionInactive, model.SubscriptionCanceled} {
		instructor := createInstructor(t, db, nil)
		setStatus(t, db, instructor.ID, status)

		err := billing.Activate(ctx, instructor.ID, time.Now())
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("activation from %s: expected ErrInvalidTransition, got %v", status, err)
		}

		reloaded := reloadInstructor(t, db, instructor.ID)
		if reloaded.SubscriptionStatus != status {
			t.Errorf("instructor must stay %s, got %s", status, reloaded.SubscriptionStatus)
		}
	}
}
