package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommissionType is the closed set of ledger entry kinds.
type CommissionType string

const (
	CommissionDirect        CommissionType = "direct"
	CommissionReferral      CommissionType = "referral"
	CommissionReferralBonus CommissionType = "referral_bonus"
)

// Valid reports whether t is a known commission type.
func (t CommissionType) Valid() bool {
	switch t {
	case CommissionDirect, CommissionReferral, CommissionReferralBonus:
		return true
	}
	return false
}

// OrderBacked reports whether entries of this type must reference an order.
// referral_bonus is the only type not tied to an order.
func (t CommissionType) OrderBacked() bool {
	switch t {
	case CommissionDirect, CommissionReferral:
		return true
	case CommissionReferralBonus:
		return false
	}
	return false
}

// CommissionEntry is one append-only row of the commission ledger.
//
// Idempotency is enforced at the storage layer: (order_id, instructor_id, type)
// is unique for the order-settlement path and (registrant_id, type) for the
// registration-bonus path, so one registrant can ever trigger one bonus no
// matter which code later deliveries name. Postgres treats NULLs as distinct,
// so each index only binds rows of its own path.
type CommissionEntry struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID      *string        `gorm:"type:varchar(64);uniqueIndex:idx_ledger_order_key" json:"order_id,omitempty"`
	RegistrantID *uint          `gorm:"uniqueIndex:idx_ledger_bonus_key" json:"registrant_id,omitempty"`
	InstructorID uint           `gorm:"not null;index;uniqueIndex:idx_ledger_order_key" json:"instructor_id"`
	Type         CommissionType `gorm:"type:varchar(20);not null;uniqueIndex:idx_ledger_order_key;uniqueIndex:idx_ledger_bonus_key" json:"type"`

	// Audit snapshots taken at calculation time. Bonus entries carry a zero
	// order total and rate; their amount is the configured flat bonus.
	OrderTotalCents       int64   `gorm:"not null;default:0" json:"order_total_cents"`
	CommissionRate        float64 `gorm:"not null;default:0" json:"commission_rate"`
	CommissionAmountCents int64   `gorm:"not null" json:"commission_amount_cents"`

	PaidOut   bool      `gorm:"default:false" json:"paid_out"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for CommissionEntry
func (CommissionEntry) TableName() string {
	return "commission_entries"
}

// BeforeCreate assigns a UUID when none was provided.
func (e *CommissionEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
