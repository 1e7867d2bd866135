package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/craftclass/storefront-api/model"
	"github.com/craftclass/storefront-api/utils/cache"
	"gorm.io/gorm"
)

// ErrInstructorNotFound is returned when a referral code or instructor ID
// does not resolve to a known instructor.
var ErrInstructorNotFound = errors.New("instructor not found")

const directoryCacheTTL = 5 * time.Minute

// DirectoryService is the read-only lookup from referral code to instructor,
// including the instructor's own referrer (one level up, never more).
type DirectoryService struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewDirectoryService creates a new directory service. The cache may be nil;
// lookups then always hit the database.
func NewDirectoryService(db *gorm.DB, redisCache *cache.RedisCache) *DirectoryService {
	return &DirectoryService{db: db, cache: redisCache}
}

// Resolve returns the instructor owning the given referral code.
func (s *DirectoryService) Resolve(ctx context.Context, code string) (*model.Instructor, error) {
	if code == "" {
		return nil, ErrInstructorNotFound
	}

	cacheKey := "referral:code:" + code
	if s.cache != nil {
		var cached model.Instructor
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var instructor model.Instructor
	err := s.db.WithContext(ctx).Where("referral_code = ?", code).First(&instructor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstructorNotFound
		}
		return nil, fmt.Errorf("failed to resolve referral code: %w", err)
	}

	if s.cache != nil {
		// Best effort; a cold cache only costs a DB read
		_ = s.cache.SetJSON(ctx, cacheKey, instructor, directoryCacheTTL)
	}

	return &instructor, nil
}

// InvalidateCode drops the cached record behind a referral code. Must be
// called whenever a write changes the instructor the code resolves to, or
// settlements keep seeing the stale record until the TTL runs out.
func (s *DirectoryService) InvalidateCode(ctx context.Context, code string) {
	if s.cache == nil || code == "" {
		return
	}
	if err := s.cache.Delete(ctx, "referral:code:"+code); err != nil {
		log.Printf("[DIRECTORY] failed to invalidate cache for code %q: %v", code, err)
	}
}

// ReferrerOf returns the instructor who referred the given instructor, or
// nil when there is none. Exactly one hop; the chain is never walked further.
func (s *DirectoryService) ReferrerOf(ctx context.Context, instructor *model.Instructor) (*model.Instructor, error) {
	if instructor.ReferredByInstructorID == nil {
		return nil, nil
	}

	var referrer model.Instructor
	err := s.db.WithContext(ctx).First(&referrer, *instructor.ReferredByInstructorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load referrer: %w", err)
	}

	return &referrer, nil
}

// Get returns an instructor by ID.
func (s *DirectoryService) Get(ctx context.Context, id uint) (*model.Instructor, error) {
	var instructor model.Instructor
	err := s.db.WithContext(ctx).First(&instructor, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstructorNotFound
		}
		return nil, fmt.Errorf("failed to load instructor: %w", err)
	}
	return &instructor, nil
}
