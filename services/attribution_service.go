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

// OrderSettledEvent is the payment collaborator's "order paid" notification.
// Delivery is at-least-once; handling must be idempotent per OrderID.
type OrderSettledEvent struct {
	OrderID          string      `json:"order_id" validate:"required,max=64"`
	ReferralCodeUsed *string     `json:"referral_code_used"`
	TotalCents       int64       `json:"total_cents" validate:"gte=0"`
	Currency         string      `json:"currency" validate:"required,len=3"`
	Items            []OrderItem `json:"items"`
}

// OrderItem is one line of a settled order. Carried for audit only; the
// commission math uses the order total.
type OrderItem struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

// InstructorRegisteredEvent is the registration collaborator's notification
// that a new instructor signed up, possibly via a referral link.
type InstructorRegisteredEvent struct {
	InstructorID     uint    `json:"instructor_id" validate:"required"`
	ReferralCodeUsed *string `json:"referral_code_used"`
}

// AttributionService orchestrates the two event paths: order settlement and
// instructor registration. It resolves referral codes through the directory,
// computes entries with the calculator, writes them through the ledger, and
// emits notification requests.
type AttributionService struct {
	db         *gorm.DB
	directory  *DirectoryService
	calculator *CommissionCalculator
	ledger     *LedgerService
	notifier   *NotifierService
	bonusCents int64
}

// NewAttributionService creates an attribution service.
func NewAttributionService(db *gorm.DB, directory *DirectoryService, calculator *CommissionCalculator, ledger *LedgerService, notifier *NotifierService, bonusCents int64) *AttributionService {
	return &AttributionService{
		db:         db,
		directory:  directory,
		calculator: calculator,
		ledger:     ledger,
		notifier:   notifier,
		bonusCents: bonusCents,
	}
}

// HandleOrderSettled processes one delivery of an order-settled event.
//
// A returned error means storage failed and the delivery must be retried by
// the at-least-once channel. Everything else, including a referral code that
// resolves to nobody, completes successfully: the order stands, the ledger
// just gains no entries.
func (s *AttributionService) HandleOrderSettled(ctx context.Context, event OrderSettledEvent) error {
	order, err := s.upsertOrder(ctx, event)
	if err != nil {
		return err
	}

	if order.ReferralCodeUsed == nil || *order.ReferralCodeUsed == "" {
		log.Printf("[ATTRIBUTION] order %s settled with no referral code", order.ID)
		return nil
	}

	seller, err := s.directory.Resolve(ctx, *order.ReferralCodeUsed)
	if err != nil {
		if errors.Is(err, ErrInstructorNotFound) {
			// Deliberate gap: the code earned the buyer a discount at
			// price-display time but attributes to nobody.
			log.Printf("[ATTRIBUTION] order %s referral code %q did not resolve, no commission recorded",
				order.ID, *order.ReferralCodeUsed)
			return nil
		}
		return err
	}

	referrer, err := s.directory.ReferrerOf(ctx, seller)
	if err != nil {
		return err
	}

	entries := s.calculator.Calculate(order, seller, referrer)
	for i := range entries {
		recorded, created, err := s.ledger.Record(ctx, &entries[i])
		if err != nil {
			return fmt.Errorf("order %s: %w", order.ID, err)
		}
		if created {
			s.notifier.SaleRecorded(ctx, recorded)
		} else {
			log.Printf("[ATTRIBUTION] order %s: %s entry for instructor %d already recorded",
				order.ID, recorded.Type, recorded.InstructorID)
		}
		s.refreshCounters(ctx, recorded.InstructorID)
	}

	return nil
}

// HandleInstructorRegistered processes one delivery of a registration event.
// A referral code belonging to the registrant themself is rejected silently;
// the registration stands either way.
func (s *AttributionService) HandleInstructorRegistered(ctx context.Context, event InstructorRegisteredEvent) error {
	if event.ReferralCodeUsed == nil || *event.ReferralCodeUsed == "" {
		return nil
	}

	referrer, err := s.directory.Resolve(ctx, *event.ReferralCodeUsed)
	if err != nil {
		if errors.Is(err, ErrInstructorNotFound) {
			log.Printf("[ATTRIBUTION] registration %d referral code %q did not resolve",
				event.InstructorID, *event.ReferralCodeUsed)
			return nil
		}
		return err
	}

	if referrer.ID == event.InstructorID {
		log.Printf("[ATTRIBUTION] registration %d used its own referral code, bonus rejected", event.InstructorID)
		return nil
	}

	if err := s.linkReferrer(ctx, event.InstructorID, referrer.ID); err != nil {
		return err
	}

	registrantID := event.InstructorID
	entry := &model.CommissionEntry{
		RegistrantID:          &registrantID,
		InstructorID:          referrer.ID,
		Type:                  model.CommissionReferralBonus,
		CommissionAmountCents: s.bonusCents,
	}

	recorded, created, err := s.ledger.Record(ctx, entry)
	if err != nil {
		return fmt.Errorf("registration %d: %w", event.InstructorID, err)
	}
	if created {
		s.notifier.ReferralSucceeded(ctx, referrer.ID, event.InstructorID, recorded.CommissionAmountCents)
	} else {
		log.Printf("[ATTRIBUTION] registration %d: bonus for instructor %d already recorded",
			event.InstructorID, referrer.ID)
	}
	s.refreshCounters(ctx, referrer.ID)

	return nil
}

// upsertOrder records the order facts on first delivery and leaves them
// untouched afterwards. SettledAt is set exactly once.
func (s *AttributionService) upsertOrder(ctx context.Context, event OrderSettledEvent) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", event.OrderID).Error
	if err == nil {
		if order.SettledAt == nil {
			now := time.Now()
			if uerr := s.db.WithContext(ctx).Model(&order).Update("settled_at", now).Error; uerr != nil {
				return nil, fmt.Errorf("failed to settle order %s: %w", order.ID, uerr)
			}
			order.SettledAt = &now
		}
		return &order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load order %s: %w", event.OrderID, err)
	}

	now := time.Now()
	order = model.Order{
		ID:               event.OrderID,
		ReferralCodeUsed: event.ReferralCodeUsed,
		TotalCents:       event.TotalCents,
		Currency:         event.Currency,
		SettledAt:        &now,
	}
	if cerr := s.db.WithContext(ctx).Create(&order).Error; cerr != nil {
		if errors.Is(cerr, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent delivery of the same event
			if ferr := s.db.WithContext(ctx).First(&order, "id = ?", event.OrderID).Error; ferr == nil {
				return &order, nil
			}
		}
		return nil, fmt.Errorf("failed to create order %s: %w", event.OrderID, cerr)
	}

	return &order, nil
}

// linkReferrer stamps referred_by_instructor_id at registration time. Once
// set it never changes, even if a later delivery names a different code.
func (s *AttributionService) linkReferrer(ctx context.Context, registrantID, referrerID uint) error {
	var registrant model.Instructor
	err := s.db.WithContext(ctx).First(&registrant, registrantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Registration collaborator owns the row; it may not have landed yet
			log.Printf("[ATTRIBUTION] registrant %d not found in directory, referrer link skipped", registrantID)
			return nil
		}
		return fmt.Errorf("failed to load registrant %d: %w", registrantID, err)
	}

	if registrant.ReferredByInstructorID != nil {
		if *registrant.ReferredByInstructorID != referrerID {
			log.Printf("[ATTRIBUTION] registrant %d already linked to instructor %d, keeping original",
				registrantID, *registrant.ReferredByInstructorID)
		}
		return nil
	}

	err = s.db.WithContext(ctx).Model(&registrant).
		Where("referred_by_instructor_id IS NULL").
		Update("referred_by_instructor_id", referrerID).Error
	if err != nil {
		return fmt.Errorf("failed to link registrant %d to referrer %d: %w", registrantID, referrerID, err)
	}

	// A settlement before this delivery may have cached the unlinked record
	// under the registrant's own code; later settlements would then skip the
	// referral cut for the rest of the TTL.
	s.directory.InvalidateCode(ctx, registrant.ReferralCode)
	return nil
}

// refreshCounters updates the cached aggregates. The ledger write already
// succeeded, so a failure here is logged and left to the reconciliation job.
func (s *AttributionService) refreshCounters(ctx context.Context, instructorID uint) {
	if err := s.ledger.RecomputeCounters(ctx, instructorID); err != nil {
		log.Printf("[ATTRIBUTION] failed to refresh counters for instructor %d: %v", instructorID, err)
	}
}
