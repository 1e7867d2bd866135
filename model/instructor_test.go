package model

import "testing"

func TestSubscriptionStatusTransitions(t *testing.T) {
	cases := []struct {
		from    SubscriptionStatus
		to      SubscriptionStatus
		allowed bool
	}{
		{SubscriptionPending, SubscriptionActive, true},
		{SubscriptionPending, SubscriptionInactive, false},
		{SubscriptionPending, SubscriptionCanceled, false},
		{SubscriptionActive, SubscriptionInactive, true},
		{SubscriptionActive, SubscriptionCanceled, true},
		{SubscriptionActive, SubscriptionPending, false},
		{SubscriptionInactive, SubscriptionActive, true},
		{SubscriptionInactive, SubscriptionCanceled, false},
		{SubscriptionCanceled, SubscriptionActive, false},
		{SubscriptionCanceled, SubscriptionInactive, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected allowed=%v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestCommissionTypeValid(t *testing.T) {
	for _, valid := range []CommissionType{CommissionDirect, CommissionReferral, CommissionReferralBonus} {
		if !valid.Valid() {
			t.Errorf("expected %q to be valid", valid)
		}
	}
	if CommissionType("cashback").Valid() {
		t.Error("unknown type must not validate")
	}
}

func TestCommissionTypeOrderBacked(t *testing.T) {
	if !CommissionDirect.OrderBacked() || !CommissionReferral.OrderBacked() {
		t.Error("direct and referral entries must reference an order")
	}
	if CommissionReferralBonus.OrderBacked() {
		t.Error("referral_bonus is the only type not tied to an order")
	}
}
