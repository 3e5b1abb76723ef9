package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralblueprint/backend/internal/plan"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header the same way Stripe does:
// HMAC-SHA256 over "<timestamp>.<payload>".
func signPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(at.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType, dataObject string, created time.Time) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": "2022-11-15",
		"created": %d,
		"type": %q,
		"data": {"object": %s}
	}`, created.Unix(), eventType, dataObject))
}

func TestParseWebhookEventSubscriptionUpdated(t *testing.T) {
	p := &StripeProvider{webhookSecret: testWebhookSecret}

	created := time.Now()
	trialEnd := created.Add(7 * 24 * time.Hour).Unix()
	payload := eventPayload("customer.subscription.updated", fmt.Sprintf(`{
		"id": "sub_123",
		"object": "subscription",
		"status": "trialing",
		"cancel_at_period_end": true,
		"trial_end": %d,
		"current_period_end": %d,
		"metadata": {"user_id": "8a1e3c1e-9f6e-4f3a-8b34-0c3f2f9d5a11", "plan_id": "pro"}
	}`, trialEnd, trialEnd), created)

	ev, err := p.ParseWebhookEvent(payload, signPayload(payload, testWebhookSecret, created))
	require.NoError(t, err)

	assert.Equal(t, EventSubscriptionUpdated, ev.Kind)
	assert.Equal(t, "evt_test_1", ev.EventID)
	assert.Equal(t, "sub_123", ev.SubscriptionID)
	assert.Equal(t, "trialing", ev.Status)
	assert.True(t, ev.CancelAtPeriodEnd)
	assert.Equal(t, "8a1e3c1e-9f6e-4f3a-8b34-0c3f2f9d5a11", ev.UserID)
	assert.Equal(t, "pro", ev.PlanID)
	require.NotNil(t, ev.TrialEnd)
	assert.Equal(t, trialEnd, ev.TrialEnd.Unix())
	assert.Equal(t, created.Unix(), ev.OccurredAt.Unix())
}

func TestParseWebhookEventSubscriptionDeleted(t *testing.T) {
	p := &StripeProvider{webhookSecret: testWebhookSecret}

	created := time.Now()
	payload := eventPayload("customer.subscription.deleted", `{
		"id": "sub_123",
		"object": "subscription",
		"status": "canceled"
	}`, created)

	ev, err := p.ParseWebhookEvent(payload, signPayload(payload, testWebhookSecret, created))
	require.NoError(t, err)

	assert.Equal(t, EventSubscriptionDeleted, ev.Kind)
	assert.Equal(t, "sub_123", ev.SubscriptionID)
	assert.Equal(t, "canceled", ev.Status)
}

func TestParseWebhookEventPaymentSucceeded(t *testing.T) {
	p := &StripeProvider{webhookSecret: testWebhookSecret}

	created := time.Now()
	payload := eventPayload("payment_intent.succeeded", `{
		"id": "pi_456",
		"object": "payment_intent",
		"metadata": {"user_id": "8a1e3c1e-9f6e-4f3a-8b34-0c3f2f9d5a11"}
	}`, created)

	ev, err := p.ParseWebhookEvent(payload, signPayload(payload, testWebhookSecret, created))
	require.NoError(t, err)

	assert.Equal(t, EventPaymentSucceeded, ev.Kind)
	assert.Equal(t, "pi_456", ev.PaymentIntentID)
	assert.Equal(t, "8a1e3c1e-9f6e-4f3a-8b34-0c3f2f9d5a11", ev.UserID)
}

func TestParseWebhookEventUnknownType(t *testing.T) {
	p := &StripeProvider{webhookSecret: testWebhookSecret}

	created := time.Now()
	payload := eventPayload("invoice.finalized", `{"id": "in_789", "object": "invoice"}`, created)

	ev, err := p.ParseWebhookEvent(payload, signPayload(payload, testWebhookSecret, created))
	require.NoError(t, err)

	// Unhandled event types surface as unknown so the caller can ack without
	// touching any state.
	assert.Equal(t, EventUnknown, ev.Kind)
	assert.Equal(t, "evt_test_1", ev.EventID)
}

func TestParseWebhookEventTamperedPayload(t *testing.T) {
	p := &StripeProvider{webhookSecret: testWebhookSecret}

	created := time.Now()
	payload := eventPayload("customer.subscription.deleted", `{"id": "sub_123", "object": "subscription"}`, created)
	header := signPayload(payload, testWebhookSecret, created)

	tampered := eventPayload("customer.subscription.deleted", `{"id": "sub_evil", "object": "subscription"}`, created)

	ev, err := p.ParseWebhookEvent(tampered, header)
	assert.Nil(t, ev)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhookEventWrongSecret(t *testing.T) {
	p := &StripeProvider{webhookSecret: testWebhookSecret}

	created := time.Now()
	payload := eventPayload("customer.subscription.deleted", `{"id": "sub_123", "object": "subscription"}`, created)

	ev, err := p.ParseWebhookEvent(payload, signPayload(payload, "whsec_other", created))
	assert.Nil(t, ev)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhookEventMissingHeader(t *testing.T) {
	p := &StripeProvider{webhookSecret: testWebhookSecret}

	payload := eventPayload("customer.subscription.deleted", `{"id": "sub_123", "object": "subscription"}`, time.Now())

	ev, err := p.ParseWebhookEvent(payload, "")
	assert.Nil(t, ev)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestPlanDescription(t *testing.T) {
	p := &plan.Plan{Features: []string{"a", "b", "c", "d"}}
	assert.Equal(t, "a, b, c", planDescription(p))

	assert.Equal(t, "a", planDescription(&plan.Plan{Features: []string{"a"}}))
	assert.Equal(t, "", planDescription(&plan.Plan{}))
}

func TestUnixToTime(t *testing.T) {
	assert.Nil(t, unixToTime(0))

	ts := time.Now().Unix()
	got := unixToTime(ts)
	require.NotNil(t, got)
	assert.Equal(t, ts, got.Unix())
}
