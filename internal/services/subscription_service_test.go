package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralblueprint/backend/internal/billing"
	"github.com/viralblueprint/backend/internal/models"
	"github.com/viralblueprint/backend/internal/plan"
)

// mockProvider is an in-memory billing.Provider that records how often each
// processor call is made and answers with canned state.
type mockProvider struct {
	createCustomerCalls      int
	attachPaymentMethodCalls int
	ensureProductCalls       int
	ensurePriceCalls         int
	createSubscriptionCalls  int
	cancelCalls              int
	resumeCalls              int

	productID string
	priceID   string
	cancelled *billing.SubscriptionState
	resumed   *billing.SubscriptionState
}

var _ billing.Provider = (*mockProvider)(nil)

func (m *mockProvider) CreateCustomer(_ context.Context, _ billing.CreateCustomerParams) (string, error) {
	m.createCustomerCalls++
	return "cus_mock", nil
}

func (m *mockProvider) AttachPaymentMethod(_ context.Context, _, _ string) error {
	m.attachPaymentMethodCalls++
	return nil
}

func (m *mockProvider) EnsureProduct(_ context.Context, _ *plan.Plan) (string, error) {
	m.ensureProductCalls++
	return m.productID, nil
}

func (m *mockProvider) EnsurePrice(_ context.Context, _ string, _ *plan.Plan) (string, error) {
	m.ensurePriceCalls++
	return m.priceID, nil
}

func (m *mockProvider) CreateTrialSubscription(_ context.Context, _ billing.CreateSubscriptionParams) (*billing.CheckoutResult, error) {
	m.createSubscriptionCalls++
	return &billing.CheckoutResult{
		SubscriptionState: billing.SubscriptionState{ID: "sub_mock", Status: "trialing"},
	}, nil
}

func (m *mockProvider) GetSubscription(_ context.Context, id string) (*billing.SubscriptionState, error) {
	return &billing.SubscriptionState{ID: id, Status: "active"}, nil
}

func (m *mockProvider) CancelAtPeriodEnd(_ context.Context, _ string) (*billing.SubscriptionState, error) {
	m.cancelCalls++
	return m.cancelled, nil
}

func (m *mockProvider) Resume(_ context.Context, _ string) (*billing.SubscriptionState, error) {
	m.resumeCalls++
	return m.resumed, nil
}

func (m *mockProvider) CreatePortalSession(_ context.Context, _, _ string) (string, error) {
	return "https://portal.example/session", nil
}

func (m *mockProvider) GetCheckoutSession(_ context.Context, id string) (*billing.CheckoutSession, error) {
	return &billing.CheckoutSession{ID: id, Paid: true}, nil
}

func (m *mockProvider) ParseWebhookEvent(_ []byte, _ string) (*billing.WebhookEvent, error) {
	return &billing.WebhookEvent{Kind: billing.EventUnknown}, nil
}

func TestResolveCatalogPriceReusesMemo(t *testing.T) {
	p := &plan.Plan{ID: "pro", Name: "Pro", UnitAmount: 2900, Currency: "usd", Interval: "month"}
	ref := &models.PlanPriceRef{
		PlanID:     "pro",
		ProductID:  "prod_existing",
		PriceID:    "price_existing",
		UnitAmount: 2900,
		Currency:   "usd",
		Interval:   "month",
	}
	mock := &mockProvider{productID: "prod_new", priceID: "price_new"}

	priceID, memo, err := resolveCatalogPrice(context.Background(), mock, p, ref)
	require.NoError(t, err)

	// A second checkout against a still-matching memo never re-searches the
	// processor catalog.
	assert.Equal(t, "price_existing", priceID)
	assert.Nil(t, memo)
	assert.Zero(t, mock.ensureProductCalls)
	assert.Zero(t, mock.ensurePriceCalls)
}

func TestResolveCatalogPriceEnsuresOnMiss(t *testing.T) {
	p := &plan.Plan{ID: "pro", Name: "Pro", UnitAmount: 2900, Currency: "usd", Interval: "month"}

	tests := []struct {
		name string
		ref  *models.PlanPriceRef
	}{
		{name: "no memo", ref: nil},
		{
			// Stale amount from a repriced plan must not be reused.
			name: "mismatched memo",
			ref: &models.PlanPriceRef{
				PlanID:     "pro",
				ProductID:  "prod_old",
				PriceID:    "price_old",
				UnitAmount: 1900,
				Currency:   "usd",
				Interval:   "month",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockProvider{productID: "prod_new", priceID: "price_new"}

			priceID, memo, err := resolveCatalogPrice(context.Background(), mock, p, tt.ref)
			require.NoError(t, err)

			assert.Equal(t, "price_new", priceID)
			assert.Equal(t, 1, mock.ensureProductCalls)
			assert.Equal(t, 1, mock.ensurePriceCalls)
			require.NotNil(t, memo)
			assert.Equal(t, "pro", memo.PlanID)
			assert.Equal(t, "prod_new", memo.ProductID)
			assert.Equal(t, "price_new", memo.PriceID)
			assert.Equal(t, p.UnitAmount, memo.UnitAmount)
		})
	}
}

func TestCancelResumeRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	periodEnd := now.Add(20 * 24 * time.Hour)

	rec := &models.Subscription{
		UserID:                  uuid.New(),
		ProcessorSubscriptionID: "sub_1",
		PlanID:                  "pro",
		Status:                  models.StatusActive,
		CurrentPeriodEnd:        &periodEnd,
	}
	mock := &mockProvider{
		cancelled: &billing.SubscriptionState{
			ID:                "sub_1",
			Status:            "active",
			CancelAtPeriodEnd: true,
			CurrentPeriodEnd:  &periodEnd,
		},
		resumed: &billing.SubscriptionState{ID: "sub_1", Status: "active"},
	}

	state, err := mock.CancelAtPeriodEnd(context.Background(), rec.ProcessorSubscriptionID)
	require.NoError(t, err)
	applyCancelState(rec, state, now)

	// Cancelling only schedules the end of the subscription; the user stays
	// entitled until the period elapses.
	assert.Equal(t, models.StatusActive, rec.Status)
	assert.True(t, rec.CancelAtPeriodEnd)
	require.NotNil(t, rec.CancelledAt)
	assert.True(t, billing.Entitled(rec))

	later := now.Add(time.Minute)
	state, err = mock.Resume(context.Background(), rec.ProcessorSubscriptionID)
	require.NoError(t, err)
	applyResumeState(rec, state, later)

	assert.Equal(t, models.StatusActive, rec.Status)
	assert.False(t, rec.CancelAtPeriodEnd)
	assert.Nil(t, rec.CancelledAt)
	require.NotNil(t, rec.StatusSyncedAt)
	assert.Equal(t, later, *rec.StatusSyncedAt)
}
