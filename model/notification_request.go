package model

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationKind identifies the outbound notification request type
type NotificationKind string

const (
	NotificationSale                NotificationKind = "sale-notification"
	NotificationReferralSuccess     NotificationKind = "referral-success"
	NotificationSubscriptionRenewed NotificationKind = "subscription-renewed"
)

// NotificationRequest is a fire-and-forget request to the email/notification
// collaborator. The row is written before dispatch so admins can see what was
// requested; a failed dispatch is recorded and dropped, never retried, and
// never affects the ledger write that produced it.
type NotificationRequest struct {
	ID            string           `gorm:"type:uuid;primaryKey" json:"id"`
	Kind          NotificationKind `gorm:"type:varchar(30);not null;index" json:"kind"`
	Payload       datatypes.JSON   `gorm:"type:jsonb" json:"payload"`
	Dispatched    bool             `gorm:"default:false" json:"dispatched"`
	DispatchError string           `gorm:"type:text" json:"dispatch_error,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TableName specifies the table name for NotificationRequest
func (NotificationRequest) TableName() string {
	return "notification_requests"
}

// SaleNotificationPayload notifies an instructor that a commission was earned
// on a settled order.
type SaleNotificationPayload struct {
	InstructorID          uint           `json:"instructor_id"`
	OrderID               string         `json:"order_id"`
	OrderTotalCents       int64          `json:"order_total_cents"`
	CommissionAmountCents int64          `json:"commission_amount_cents"`
	CommissionType        CommissionType `json:"commission_type"`
}

// ReferralSuccessPayload notifies a referrer that a new instructor registered
// with their code.
type ReferralSuccessPayload struct {
	InstructorID         uint  `json:"instructor_id"`
	ReferredInstructorID uint  `json:"referred_instructor_id"`
	BonusAmountCents     int64 `json:"bonus_amount_cents"`
}

// SubscriptionRenewedPayload notifies an instructor of a billing renewal.
type SubscriptionRenewedPayload struct {
	InstructorID    uint      `json:"instructor_id"`
	NextBillingDate time.Time `json:"next_billing_date"`
}
