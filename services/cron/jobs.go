package cron

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/craftclass/storefront-api/model"
	"github.com/craftclass/storefront-api/services"
)

// RenewDueSubscriptions renews every active instructor whose next billing
// date has passed. The renewal itself re-checks the elapsed period, so a
// sweep overlapping an external trigger cannot double-renew.
func (m *CronManager) RenewDueSubscriptions() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "renew_due_subscriptions"
	now := time.Now()

	due, err := m.billing.DueForRenewal(ctx, now)
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	if len(due) == 0 {
		m.logJobComplete(jobName, "No subscriptions due for renewal")
		return
	}

	renewed := 0
	failed := 0
	for _, instructor := range due {
		ok, err := m.billing.Renew(ctx, instructor.ID, now)
		if err != nil {
			if errors.Is(err, services.ErrNotActive) {
				continue
			}
			log.Printf("[CRON] Failed to renew instructor %d: %v", instructor.ID, err)
			failed++
			continue
		}
		if ok {
			renewed++
		}
	}

	m.logJobComplete(jobName, fmt.Sprintf("Checked %d subscriptions, renewed %d, failed %d", len(due), renewed, failed))
}

// ReconcileInstructorCounters recomputes the cached counters of every
// instructor that has ledger entries. The ledger is authoritative; this job
// repairs any counter drift left by failed refreshes on the hot path.
func (m *CronManager) ReconcileInstructorCounters() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	jobName := "reconcile_instructor_counters"

	var instructorIDs []uint
	err := m.db.Model(&model.CommissionEntry{}).
		Distinct("instructor_id").
		Pluck("instructor_id", &instructorIDs).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to list earning instructors: %w", err))
		return
	}

	if len(instructorIDs) == 0 {
		m.logJobComplete(jobName, "No instructors with ledger entries")
		return
	}

	failed := 0
	for _, id := range instructorIDs {
		if err := m.ledger.RecomputeCounters(ctx, id); err != nil {
			log.Printf("[CRON] Failed to reconcile counters for instructor %d: %v", id, err)
			failed++
		}
	}

	m.logJobComplete(jobName, fmt.Sprintf("Reconciled %d instructors, failed %d", len(instructorIDs), failed))
}
