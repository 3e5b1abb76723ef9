package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralblueprint/backend/internal/billing"
	"github.com/viralblueprint/backend/internal/models"
	"github.com/viralblueprint/backend/internal/plan"
)

func TestApplyEventIdempotent(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	ev := &billing.WebhookEvent{
		Kind:           billing.EventCheckoutCompleted,
		EventID:        "evt_1",
		CustomerID:     "cus_1",
		SubscriptionID: "sub_1",
		PlanID:         "pro",
		OccurredAt:     now,
	}

	rec := &models.Subscription{UserID: uuid.New(), Status: models.StatusIncomplete}
	require.True(t, applyEvent(rec, ev))
	once := *rec

	// Redeliveries of the same event must land on identical state.
	applyEvent(rec, ev)
	assert.Equal(t, once, *rec)
}

func TestApplyEventDropsStale(t *testing.T) {
	now := time.Now().UTC()
	synced := now.Add(-1 * time.Minute)

	rec := &models.Subscription{
		UserID:         uuid.New(),
		Status:         models.StatusActive,
		StatusSyncedAt: &synced,
	}

	// An out-of-order delivery carrying an older processor timestamp must not
	// regress the record.
	stale := &billing.WebhookEvent{
		Kind:       billing.EventSubscriptionUpdated,
		Status:     "past_due",
		OccurredAt: now.Add(-10 * time.Minute),
	}
	assert.False(t, applyEvent(rec, stale))
	assert.Equal(t, models.StatusActive, rec.Status)
	assert.Equal(t, synced, *rec.StatusSyncedAt)

	fresh := &billing.WebhookEvent{
		Kind:       billing.EventSubscriptionUpdated,
		Status:     "past_due",
		OccurredAt: now,
	}
	assert.True(t, applyEvent(rec, fresh))
	assert.Equal(t, models.StatusPastDue, rec.Status)
}

func TestApplyEventUnknownKindIsNoOp(t *testing.T) {
	rec := &models.Subscription{UserID: uuid.New(), Status: models.StatusTrialing}
	before := *rec

	ev := &billing.WebhookEvent{Kind: billing.EventUnknown, OccurredAt: time.Now()}
	assert.False(t, applyEvent(rec, ev))
	assert.Equal(t, before, *rec)
}

func TestApplyEventDeleted(t *testing.T) {
	now := time.Now().UTC()
	rec := &models.Subscription{
		UserID: uuid.New(),
		Status: models.StatusActive,
	}

	ev := &billing.WebhookEvent{
		Kind:       billing.EventSubscriptionDeleted,
		OccurredAt: now,
	}
	require.True(t, applyEvent(rec, ev))

	assert.Equal(t, models.StatusCancelled, rec.Status)
	require.NotNil(t, rec.CancelledAt)
	assert.Equal(t, now, *rec.CancelledAt)
	require.NotNil(t, rec.StatusSyncedAt)
	assert.Equal(t, now, *rec.StatusSyncedAt)
}

func TestApplyEventUpdatedNormalizesStatus(t *testing.T) {
	now := time.Now().UTC()
	trialEnd := now.Add(7 * 24 * time.Hour)

	rec := &models.Subscription{UserID: uuid.New(), Status: models.StatusTrialing}
	ev := &billing.WebhookEvent{
		Kind:              billing.EventSubscriptionUpdated,
		Status:            "some_future_vendor_status",
		CancelAtPeriodEnd: true,
		TrialEnd:          &trialEnd,
		OccurredAt:        now,
	}
	require.True(t, applyEvent(rec, ev))

	assert.Equal(t, models.StatusIncomplete, rec.Status)
	assert.True(t, rec.CancelAtPeriodEnd)
	assert.Equal(t, trialEnd, *rec.TrialEnd)
}

func TestApplyEventPaymentSucceeded(t *testing.T) {
	now := time.Now().UTC()
	rec := &models.Subscription{UserID: uuid.New(), Status: models.StatusIncomplete}

	ev := &billing.WebhookEvent{
		Kind:            billing.EventPaymentSucceeded,
		PaymentIntentID: "pi_1",
		PlanID:          "pro",
		OccurredAt:      now,
	}
	require.True(t, applyEvent(rec, ev))

	assert.Equal(t, models.StatusActive, rec.Status)
	assert.Equal(t, "pi_1", rec.ProcessorPaymentIntentID)
	assert.Equal(t, "pro", rec.PlanID)
}

func TestApplyProcessorState(t *testing.T) {
	periodEnd := time.Now().UTC().Add(20 * 24 * time.Hour)
	rec := &models.Subscription{
		UserID:                  uuid.New(),
		Status:                  models.StatusTrialing,
		ProcessorSubscriptionID: "sub_1",
	}

	state := &billing.SubscriptionState{
		ID:               "sub_1",
		Status:           "active",
		CurrentPeriodEnd: &periodEnd,
	}
	assert.True(t, applyProcessorState(rec, state))
	assert.Equal(t, models.StatusActive, rec.Status)
	assert.Equal(t, periodEnd, *rec.CurrentPeriodEnd)

	// Same state again reports no change.
	assert.False(t, applyProcessorState(rec, state))
}

func TestCatalogMatches(t *testing.T) {
	p := &plan.Plan{ID: "pro", UnitAmount: 999, Currency: "usd", Interval: "month"}

	tests := []struct {
		name     string
		ref      *models.PlanPriceRef
		expected bool
	}{
		{
			"matching ref is reused",
			&models.PlanPriceRef{ProductID: "prod_1", PriceID: "price_1", UnitAmount: 999, Currency: "usd", Interval: "month"},
			true,
		},
		{
			"nil ref",
			nil,
			false,
		},
		{
			"missing price id",
			&models.PlanPriceRef{ProductID: "prod_1", UnitAmount: 999, Currency: "usd", Interval: "month"},
			false,
		},
		{
			"amount changed in plan config",
			&models.PlanPriceRef{ProductID: "prod_1", PriceID: "price_1", UnitAmount: 499, Currency: "usd", Interval: "month"},
			false,
		},
		{
			"currency changed",
			&models.PlanPriceRef{ProductID: "prod_1", PriceID: "price_1", UnitAmount: 999, Currency: "eur", Interval: "month"},
			false,
		},
		{
			"interval changed",
			&models.PlanPriceRef{ProductID: "prod_1", PriceID: "price_1", UnitAmount: 999, Currency: "usd", Interval: "year"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, catalogMatches(tt.ref, p))
		})
	}
}
