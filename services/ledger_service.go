package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/craftclass/storefront-api/model"
	"gorm.io/gorm"
)

// ErrInvalidEntry is returned when a commission entry fails its invariants
// before it ever reaches storage.
var ErrInvalidEntry = errors.New("invalid commission entry")

// TypeTotal is an aggregate over one commission type.
type TypeTotal struct {
	Type        model.CommissionType `json:"type"`
	Count       int64                `json:"count"`
	AmountCents int64                `json:"amount_cents"`
}

// LedgerService is the append-only, idempotent commission ledger. It is the
// source of truth for all earnings; the counters cached on instructors are
// recomputed from it, never the other way around.
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new ledger service
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Record inserts a commission entry unless one already exists for its natural
// key, in which case the existing row is returned and nothing is written.
// The boolean reports whether a row was created.
//
// The pre-insert lookup is an optimization; correctness under concurrent
// deliveries of the same settlement event comes from the composite unique
// indexes. A loser of that race gets gorm.ErrDuplicatedKey and returns the
// winner's row.
func (s *LedgerService) Record(ctx context.Context, entry *model.CommissionEntry) (*model.CommissionEntry, bool, error) {
	if err := validateEntry(entry); err != nil {
		return nil, false, err
	}

	existing, err := s.findByNaturalKey(ctx, entry)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := s.findByNaturalKey(ctx, entry)
			if ferr != nil {
				return nil, false, ferr
			}
			if existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to record commission entry: %w", err)
	}

	return entry, true, nil
}

func validateEntry(entry *model.CommissionEntry) error {
	if !entry.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEntry, entry.Type)
	}
	if entry.Type.OrderBacked() {
		if entry.OrderID == nil || *entry.OrderID == "" {
			return fmt.Errorf("%w: %s entry requires an order", ErrInvalidEntry, entry.Type)
		}
		if entry.CommissionAmountCents > entry.OrderTotalCents {
			return fmt.Errorf("%w: amount exceeds order total", ErrInvalidEntry)
		}
	} else {
		if entry.OrderID != nil {
			return fmt.Errorf("%w: %s entry must not reference an order", ErrInvalidEntry, entry.Type)
		}
		if entry.RegistrantID == nil {
			return fmt.Errorf("%w: %s entry requires a registrant", ErrInvalidEntry, entry.Type)
		}
	}
	if entry.CommissionAmountCents < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalidEntry)
	}
	return nil
}

func (s *LedgerService) findByNaturalKey(ctx context.Context, entry *model.CommissionEntry) (*model.CommissionEntry, error) {
	query := s.db.WithContext(ctx).Model(&model.CommissionEntry{}).
		Where("type = ?", entry.Type)

	if entry.Type.OrderBacked() {
		query = query.Where("order_id = ? AND instructor_id = ?", *entry.OrderID, entry.InstructorID)
	} else {
		// Bonus entries key on the registrant alone: one registration, one
		// bonus, regardless of which code later deliveries name
		query = query.Where("registrant_id = ?", *entry.RegistrantID)
	}

	var existing model.CommissionEntry
	err := query.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check ledger natural key: %w", err)
	}
	return &existing, nil
}

// ListByInstructor returns an instructor's commission entries, newest first.
func (s *LedgerService) ListByInstructor(ctx context.Context, instructorID uint, limit, offset int) ([]model.CommissionEntry, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.CommissionEntry{}).
		Where("instructor_id = ?", instructorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count commission entries: %w", err)
	}

	var entries []model.CommissionEntry
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list commission entries: %w", err)
	}

	return entries, total, nil
}

// ListByOrder returns all commission entries attributed to an order.
func (s *LedgerService) ListByOrder(ctx context.Context, orderID string) ([]model.CommissionEntry, error) {
	var entries []model.CommissionEntry
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list commission entries for order: %w", err)
	}
	return entries, nil
}

// TotalsByType aggregates the whole ledger per commission type.
func (s *LedgerService) TotalsByType(ctx context.Context) ([]TypeTotal, error) {
	var totals []TypeTotal
	err := s.db.WithContext(ctx).Model(&model.CommissionEntry{}).
		Select("type, COUNT(*) AS count, COALESCE(SUM(commission_amount_cents), 0) AS amount_cents").
		Group("type").
		Order("type").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger totals: %w", err)
	}
	return totals, nil
}

// RecomputeCounters refreshes an instructor's cached counters from the
// ledger. The ledger is authoritative; this is safe to run at any time.
func (s *LedgerService) RecomputeCounters(ctx context.Context, instructorID uint) error {
	var directCount, referralCount, earned int64

	if err := s.db.WithContext(ctx).Model(&model.CommissionEntry{}).
		Where("instructor_id = ? AND type = ?", instructorID, model.CommissionDirect).
		Count(&directCount).Error; err != nil {
		return fmt.Errorf("failed to count direct sales: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.CommissionEntry{}).
		Where("instructor_id = ? AND type = ?", instructorID, model.CommissionReferral).
		Count(&referralCount).Error; err != nil {
		return fmt.Errorf("failed to count referral sales: %w", err)
	}

	row := s.db.WithContext(ctx).Model(&model.CommissionEntry{}).
		Where("instructor_id = ?", instructorID).
		Select("COALESCE(SUM(commission_amount_cents), 0)").
		Row()
	if err := row.Scan(&earned); err != nil {
		return fmt.Errorf("failed to sum commission earned: %w", err)
	}

	err := s.db.WithContext(ctx).Model(&model.Instructor{}).
		Where("id = ?", instructorID).
		Updates(map[string]interface{}{
			"direct_sales_count":      directCount,
			"referral_sales_count":    referralCount,
			"commission_earned_cents": earned,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update instructor counters: %w", err)
	}

	return nil
}

// MarkPaidOut flips paid_out false -> true for the given entries. Driven by
// the external payout batch; rows already paid out are left untouched.
func (s *LedgerService) MarkPaidOut(ctx context.Context, entryIDs []string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.CommissionEntry{}).
		Where("id IN ? AND paid_out = ?", entryIDs, false).
		Update("paid_out", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark entries paid out: %w", result.Error)
	}
	return result.RowsAffected, nil
}
