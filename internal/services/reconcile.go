package services

import (
	"time"

	"github.com/viralblueprint/backend/internal/billing"
	"github.com/viralblueprint/backend/internal/models"
	"github.com/viralblueprint/backend/internal/plan"
)

// applyEvent folds a processor event into the local record. Only absolute
// state is set, never counters, so replaying the same event is a no-op beyond
// a redundant write. Events older than the record's sync watermark are
// dropped: webhook delivery order is not guaranteed, and receipt order must
// not regress status to a stale value.
//
// Returns false when the record must not be written.
func applyEvent(rec *models.Subscription, ev *billing.WebhookEvent) bool {
	if ev.Kind == billing.EventUnknown {
		return false
	}
	if rec.StatusSyncedAt != nil && ev.OccurredAt.Before(*rec.StatusSyncedAt) {
		return false
	}

	switch ev.Kind {
	case billing.EventPaymentSucceeded:
		rec.Status = models.StatusActive
		if ev.PaymentIntentID != "" {
			rec.ProcessorPaymentIntentID = ev.PaymentIntentID
		}
		if ev.PlanID != "" {
			rec.PlanID = ev.PlanID
		}

	case billing.EventCheckoutCompleted:
		rec.Status = models.StatusActive
		if ev.CustomerID != "" {
			rec.ProcessorCustomerID = ev.CustomerID
		}
		if ev.SubscriptionID != "" {
			rec.ProcessorSubscriptionID = ev.SubscriptionID
		}
		if ev.PlanID != "" {
			rec.PlanID = ev.PlanID
		}

	case billing.EventSubscriptionDeleted:
		rec.Status = models.StatusCancelled
		if rec.CancelledAt == nil {
			at := ev.OccurredAt
			rec.CancelledAt = &at
		}

	case billing.EventSubscriptionUpdated:
		rec.Status = billing.NormalizeStatus(ev.Status)
		rec.CancelAtPeriodEnd = ev.CancelAtPeriodEnd
		if ev.TrialEnd != nil {
			rec.TrialEnd = ev.TrialEnd
		}
		if ev.CurrentPeriodEnd != nil {
			rec.CurrentPeriodEnd = ev.CurrentPeriodEnd
		}
	}

	at := ev.OccurredAt
	rec.StatusSyncedAt = &at
	return true
}

// applyProcessorState folds the processor's current view of a subscription
// into the local record during an on-demand check. Used to self-heal when a
// webhook was missed.
func applyProcessorState(rec *models.Subscription, state *billing.SubscriptionState) bool {
	status := billing.NormalizeStatus(state.Status)
	changed := rec.Status != status ||
		rec.CancelAtPeriodEnd != state.CancelAtPeriodEnd ||
		rec.ProcessorSubscriptionID != state.ID

	rec.Status = status
	rec.CancelAtPeriodEnd = state.CancelAtPeriodEnd
	rec.ProcessorSubscriptionID = state.ID
	if state.TrialEnd != nil {
		rec.TrialEnd = state.TrialEnd
	}
	if state.CurrentPeriodEnd != nil {
		rec.CurrentPeriodEnd = state.CurrentPeriodEnd
	}
	return changed
}

// applyCancelState folds the processor's response to a cancel-at-period-end
// request into the local record. The normalized status comes straight from
// the processor, which keeps the subscription running until the period ends,
// so cancelling does not change status by itself.
func applyCancelState(rec *models.Subscription, state *billing.SubscriptionState, now time.Time) {
	rec.Status = billing.NormalizeStatus(state.Status)
	rec.CancelAtPeriodEnd = true
	rec.CancelledAt = &now
	rec.StatusSyncedAt = &now
	if state.CurrentPeriodEnd != nil {
		rec.CurrentPeriodEnd = state.CurrentPeriodEnd
	}
}

// applyResumeState folds the processor's response to clearing a pending
// cancellation into the local record.
func applyResumeState(rec *models.Subscription, state *billing.SubscriptionState, now time.Time) {
	rec.Status = billing.NormalizeStatus(state.Status)
	rec.CancelAtPeriodEnd = false
	rec.CancelledAt = nil
	rec.StatusSyncedAt = &now
}

// catalogMatches reports whether a memoized processor price is still valid
// for the plan. A stale ref (price or amount changed in the plan config) must
// never be reused.
func catalogMatches(ref *models.PlanPriceRef, p *plan.Plan) bool {
	if ref == nil {
		return false
	}
	return ref.ProductID != "" && ref.PriceID != "" &&
		ref.UnitAmount == p.UnitAmount &&
		ref.Currency == p.Currency &&
		ref.Interval == p.Interval
}
