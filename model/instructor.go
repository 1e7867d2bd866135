package model

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionStatus represents an instructor's subscription lifecycle state
type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// CanTransitionTo enforces the subscription state machine:
// pending -> active, active <-> inactive, active -> canceled (terminal).
func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	switch s {
	case SubscriptionPending:
		return next == SubscriptionActive
	case SubscriptionActive:
		return next == SubscriptionInactive || next == SubscriptionCanceled
	case SubscriptionInactive:
		return next == SubscriptionActive
	case SubscriptionCanceled:
		return false
	default:
		return false
	}
}

// Instructor represents a referral-program participant. The referral code is
// issued once and never changes; ReferredByInstructorID is set at registration
// and immutable afterwards (one level up only).
type Instructor struct {
	ID                     uint               `gorm:"primaryKey" json:"id"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
	DeletedAt              gorm.DeletedAt     `gorm:"index" json:"-"`
	Email                  string             `gorm:"uniqueIndex;not null" json:"email"`
	Name                   string             `gorm:"not null" json:"name"`
	ReferralCode           string             `gorm:"type:varchar(64);uniqueIndex;not null" json:"referral_code"`
	ReferredByInstructorID *uint              `gorm:"index" json:"referred_by_instructor_id,omitempty"`
	SubscriptionStatus     SubscriptionStatus `gorm:"type:varchar(20);default:'pending'" json:"subscription_status"`
	NextBillingDate        *time.Time         `json:"next_billing_date,omitempty"`
	LastRenewedAt          *time.Time         `json:"last_renewed_at,omitempty"`

	// Cached aggregates over commission_entries. The ledger is authoritative;
	// these are refreshed by the attribution path and the reconciliation job.
	DirectSalesCount      int   `gorm:"default:0" json:"direct_sales_count"`
	ReferralSalesCount    int   `gorm:"default:0" json:"referral_sales_count"`
	CommissionEarnedCents int64 `gorm:"default:0" json:"commission_earned_cents"`

	// Relationships
	ReferredBy *Instructor       `gorm:"foreignKey:ReferredByInstructorID" json:"-"`
	Entries    []CommissionEntry `gorm:"foreignKey:InstructorID" json:"-"`
}

// TableName specifies the table name for Instructor
func (Instructor) TableName() string {
	return "instructors"
}

// InstructorResponse is the API response format for an instructor record
type InstructorResponse struct {
	ID                     uint               `json:"id"`
	Name                   string             `json:"name"`
	ReferralCode           string             `json:"referral_code"`
	ReferredByInstructorID *uint              `json:"referred_by_instructor_id,omitempty"`
	SubscriptionStatus     SubscriptionStatus `json:"subscription_status"`
	NextBillingDate        *time.Time         `json:"next_billing_date,omitempty"`
	DirectSalesCount       int                `json:"direct_sales_count"`
	ReferralSalesCount     int                `json:"referral_sales_count"`
	CommissionEarnedCents  int64              `json:"commission_earned_cents"`
	CreatedAt              time.Time          `json:"created_at"`
}

// ToResponse converts an Instructor to InstructorResponse
func (i *Instructor) ToResponse() InstructorResponse {
	return InstructorResponse{
		ID:                     i.ID,
		Name:                   i.Name,
		ReferralCode:           i.ReferralCode,
		ReferredByInstructorID: i.ReferredByInstructorID,
		SubscriptionStatus:     i.SubscriptionStatus,
		NextBillingDate:        i.NextBillingDate,
		DirectSalesCount:       i.DirectSalesCount,
		ReferralSalesCount:     i.ReferralSalesCount,
		CommissionEarnedCents:  i.CommissionEarnedCents,
		CreatedAt:              i.CreatedAt,
	}
}
