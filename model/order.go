package model

import (
	"time"
)

// Order is this subsystem's view of a storefront order. The ID comes from the
// checkout collaborator and is the idempotency anchor for settlement events.
// ReferralCodeUsed is the session snapshot copied onto the order at creation;
// it never changes even if the browser session later expires or is overwritten.
type Order struct {
	ID               string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	ReferralCodeUsed *string    `gorm:"type:varchar(64);index" json:"referral_code_used,omitempty"`
	TotalCents       int64      `gorm:"not null" json:"total_cents"`
	Currency         string     `gorm:"type:varchar(10);default:'USD'" json:"currency"`
	SettledAt        *time.Time `json:"settled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}

// Settled reports whether the payment processor has confirmed payment.
func (o *Order) Settled() bool {
	return o.SettledAt != nil
}
