package services

import (
	"testing"
	"time"

	"github.com/craftclass/storefront-api/model"
)

func TestEffectivePriceWithoutCode(t *testing.T) {
	svc := NewPricingService(3300)
	now := time.Now()

	// Order total $36.70, no referral code: price unchanged
	if got := svc.EffectivePrice(3670, model.ReferralSession{}, now); got != 3670 {
		t.Errorf("expected base price 3670, got %d", got)
	}
}

func TestEffectivePriceWithActiveCode(t *testing.T) {
	svc := NewPricingService(3300)
	now := time.Now()
	session := model.ReferralSession{}.Capture("SAM2024", "", now, model.DefaultReferralSessionTTL)

	// Any active code returns the flat override, for any base price
	for _, base := range []int64{100, 3670, 9999, 100000} {
		if got := svc.EffectivePrice(base, session, now); got != 3300 {
			t.Errorf("base %d: expected override 3300, got %d", base, got)
		}
	}
}

func TestEffectivePriceUnverifiedCode(t *testing.T) {
	// The discount is not contingent on the code resolving to a real
	// instructor; verification happens later at attribution time.
	svc := NewPricingService(3300)
	now := time.Now()
	session := model.ReferralSession{}.Capture("NO-SUCH-CODE", "", now, model.DefaultReferralSessionTTL)

	if got := svc.EffectivePrice(3670, session, now); got != 3300 {
		t.Errorf("unverified code must still discount, got %d", got)
	}
}

func TestEffectivePriceExpiredSession(t *testing.T) {
	svc := NewPricingService(3300)
	captured := time.Now().Add(-31 * 24 * time.Hour)
	session := model.ReferralSession{}.Capture("SAM2024", "", captured, model.DefaultReferralSessionTTL)

	if got := svc.EffectivePrice(3670, session, time.Now()); got != 3670 {
		t.Errorf("expired session must not discount, got %d", got)
	}
}
