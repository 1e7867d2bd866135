package services

import (
	"time"

	"github.com/craftclass/storefront-api/model"
)

// PricingService computes the effective unit price for a product given the
// shopper's referral session. Any active code grants the flat override price;
// whether the code resolves to a real instructor is deliberately not checked
// here. Verification happens later at attribution time, so a bogus code can
// produce a discounted order that earns nobody a commission.
type PricingService struct {
	overridePriceCents int64
}

// NewPricingService creates a pricing service with the configured flat
// referral price.
func NewPricingService(overridePriceCents int64) *PricingService {
	return &PricingService{overridePriceCents: overridePriceCents}
}

// EffectivePrice returns the unit price in cents for the given base price and
// session. No active code returns the base price unchanged.
func (s *PricingService) EffectivePrice(basePriceCents int64, session model.ReferralSession, now time.Time) int64 {
	if _, ok := session.ActiveCode(now); ok {
		return s.overridePriceCents
	}
	return basePriceCents
}
