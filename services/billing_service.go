package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/craftclass/storefront-api/model"
	"gorm.io/gorm"
)

var (
	// ErrInvalidTransition is returned for subscription status changes the
	// state machine forbids.
	ErrInvalidTransition = errors.New("invalid subscription status transition")
	// ErrNotActive is returned when renewal is triggered for an instructor
	// whose subscription is not active.
	ErrNotActive = errors.New("subscription is not active")
)

// BillingService tracks each active instructor's billing cycle. Renewal
// revenue is not commissionable: nothing here ever touches the ledger.
type BillingService struct {
	db       *gorm.DB
	notifier *NotifierService
	period   time.Duration
}

// NewBillingService creates a billing service with the configured period.
func NewBillingService(db *gorm.DB, notifier *NotifierService, period time.Duration) *BillingService {
	return &BillingService{db: db, notifier: notifier, period: period}
}

// Activate moves a pending instructor to active and starts their billing
// cycle. Called after the first successful registration payment. Only pending
// qualifies: an instructor an admin moved to inactive (or who canceled) must
// not be re-activated by a redelivered registration event.
func (s *BillingService) Activate(ctx context.Context, instructorID uint, now time.Time) error {
	var instructor model.Instructor
	if err := s.db.WithContext(ctx).First(&instructor, instructorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInstructorNotFound
		}
		return fmt.Errorf("failed to load instructor %d: %w", instructorID, err)
	}

	if instructor.SubscriptionStatus == model.SubscriptionActive {
		// Duplicate registration delivery
		return nil
	}
	if instructor.SubscriptionStatus != model.SubscriptionPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, instructor.SubscriptionStatus, model.SubscriptionActive)
	}

	next := now.Add(s.period)
	err := s.db.WithContext(ctx).Model(&instructor).Updates(map[string]interface{}{
		"subscription_status": model.SubscriptionActive,
		"last_renewed_at":     now,
		"next_billing_date":   next,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to activate instructor %d: %w", instructorID, err)
	}

	return nil
}

// Renew processes one renewal trigger for an instructor. The external
// scheduler may fire more than once per period; a renewal only happens when
// the full billing period has elapsed since the last recorded one. Returns
// whether a renewal was performed.
func (s *BillingService) Renew(ctx context.Context, instructorID uint, now time.Time) (bool, error) {
	var instructor model.Instructor
	if err := s.db.WithContext(ctx).First(&instructor, instructorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrInstructorNotFound
		}
		return false, fmt.Errorf("failed to load instructor %d: %w", instructorID, err)
	}

	if instructor.SubscriptionStatus != model.SubscriptionActive {
		return false, ErrNotActive
	}

	if !renewalDue(instructor.LastRenewedAt, now, s.period) {
		log.Printf("[BILLING] instructor %d renewal trigger before period elapsed, ignored", instructorID)
		return false, nil
	}

	next := now.Add(s.period)
	err := s.db.WithContext(ctx).Model(&instructor).Updates(map[string]interface{}{
		"last_renewed_at":   now,
		"next_billing_date": next,
	}).Error
	if err != nil {
		return false, fmt.Errorf("failed to renew instructor %d: %w", instructorID, err)
	}

	s.notifier.SubscriptionRenewed(ctx, instructorID, next)
	return true, nil
}

// SetStatus applies an admin-driven status change through the state machine.
func (s *BillingService) SetStatus(ctx context.Context, instructorID uint, next model.SubscriptionStatus) error {
	var instructor model.Instructor
	if err := s.db.WithContext(ctx).First(&instructor, instructorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInstructorNotFound
		}
		return fmt.Errorf("failed to load instructor %d: %w", instructorID, err)
	}

	if instructor.SubscriptionStatus == next {
		return nil
	}
	if !instructor.SubscriptionStatus.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, instructor.SubscriptionStatus, next)
	}

	err := s.db.WithContext(ctx).Model(&instructor).
		Update("subscription_status", next).Error
	if err != nil {
		return fmt.Errorf("failed to update instructor %d status: %w", instructorID, err)
	}
	return nil
}

// DueForRenewal lists active instructors whose next billing date has passed.
func (s *BillingService) DueForRenewal(ctx context.Context, now time.Time) ([]model.Instructor, error) {
	var due []model.Instructor
	err := s.db.WithContext(ctx).
		Where("subscription_status = ? AND next_billing_date IS NOT NULL AND next_billing_date <= ?",
			model.SubscriptionActive, now).
		Find(&due).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list instructors due for renewal: %w", err)
	}
	return due, nil
}

// renewalDue reports whether a full billing period has elapsed since the
// last recorded renewal. A missing timestamp means the cycle never started
// being tracked, so the renewal proceeds.
func renewalDue(lastRenewedAt *time.Time, now time.Time, period time.Duration) bool {
	if lastRenewedAt == nil {
		return true
	}
	return now.Sub(*lastRenewedAt) >= period
}
