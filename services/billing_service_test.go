package services

import (
	"testing"
	"time"
)

func TestRenewalDue(t *testing.T) {
	period := 30 * 24 * time.Hour
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("never renewed", func(t *testing.T) {
		if !renewalDue(nil, now, period) {
			t.Error("untracked cycle must allow renewal")
		}
	})

	t.Run("period elapsed", func(t *testing.T) {
		last := now.Add(-period)
		if !renewalDue(&last, now, period) {
			t.Error("renewal due exactly at period boundary")
		}
	})

	t.Run("duplicate trigger inside period", func(t *testing.T) {
		last := now.Add(-time.Hour)
		if renewalDue(&last, now, period) {
			t.Error("renewal must be rejected before the period elapses")
		}
	})

	t.Run("trigger one second early", func(t *testing.T) {
		last := now.Add(-period + time.Second)
		if renewalDue(&last, now, period) {
			t.Error("renewal must wait for the full period")
		}
	})
}
