package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/craftclass/storefront-api/model"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotifierService emits notification requests to the email/notification
// collaborator. Every emission is fire-and-forget: the request row is
// persisted for audit, the POST is attempted once, and any failure is logged
// and dropped. A notification must never block or reverse a ledger write,
// so nothing here returns an error to its caller.
type NotifierService struct {
	db         *gorm.DB
	webhookURL string
	client     *http.Client
}

// NewNotifierService creates a notifier. An empty webhookURL records requests
// without dispatching them.
func NewNotifierService(db *gorm.DB, webhookURL string) *NotifierService {
	return &NotifierService{
		db:         db,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// SaleRecorded requests a sale notification for a newly recorded commission.
func (s *NotifierService) SaleRecorded(ctx context.Context, entry *model.CommissionEntry) {
	orderID := ""
	if entry.OrderID != nil {
		orderID = *entry.OrderID
	}
	s.emit(ctx, model.NotificationSale, model.SaleNotificationPayload{
		InstructorID:          entry.InstructorID,
		OrderID:               orderID,
		OrderTotalCents:       entry.OrderTotalCents,
		CommissionAmountCents: entry.CommissionAmountCents,
		CommissionType:        entry.Type,
	})
}

// ReferralSucceeded requests a referral-success notification for a referrer.
func (s *NotifierService) ReferralSucceeded(ctx context.Context, referrerID, registrantID uint, bonusCents int64) {
	s.emit(ctx, model.NotificationReferralSuccess, model.ReferralSuccessPayload{
		InstructorID:         referrerID,
		ReferredInstructorID: registrantID,
		BonusAmountCents:     bonusCents,
	})
}

// SubscriptionRenewed requests a renewal notification.
func (s *NotifierService) SubscriptionRenewed(ctx context.Context, instructorID uint, nextBillingDate time.Time) {
	s.emit(ctx, model.NotificationSubscriptionRenewed, model.SubscriptionRenewedPayload{
		InstructorID:    instructorID,
		NextBillingDate: nextBillingDate,
	})
}

func (s *NotifierService) emit(ctx context.Context, kind model.NotificationKind, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[NOTIFY] failed to marshal %s payload: %v", kind, err)
		return
	}

	request := &model.NotificationRequest{
		ID:      uuid.New().String(),
		Kind:    kind,
		Payload: datatypes.JSON(body),
	}
	if err := s.db.WithContext(ctx).Create(request).Error; err != nil {
		// Audit row is best effort; still attempt the dispatch
		log.Printf("[NOTIFY] failed to persist %s request: %v", kind, err)
		request = nil
	}

	dispatchErr := s.dispatch(ctx, kind, body)
	if dispatchErr != nil {
		log.Printf("[NOTIFY] dropping %s request: %v", kind, dispatchErr)
	}

	if request != nil {
		updates := map[string]interface{}{"dispatched": dispatchErr == nil}
		if dispatchErr != nil {
			updates["dispatch_error"] = dispatchErr.Error()
		}
		if err := s.db.WithContext(ctx).Model(request).Updates(updates).Error; err != nil {
			log.Printf("[NOTIFY] failed to update %s request status: %v", kind, err)
		}
	}
}

func (s *NotifierService) dispatch(ctx context.Context, kind model.NotificationKind, payload []byte) error {
	if s.webhookURL == "" {
		return fmt.Errorf("notification collaborator not configured")
	}

	envelope, err := json.Marshal(map[string]interface{}{
		"kind":    kind,
		"payload": json.RawMessage(payload),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(envelope))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification collaborator returned %d", resp.StatusCode)
	}
	return nil
}
