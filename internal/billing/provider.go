// Package billing wraps the payment processor behind a small Provider
// interface so subscription logic can be exercised without network calls.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/viralblueprint/backend/internal/plan"
)

var (
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrSubscriptionNotFound = errors.New("subscription not found at processor")
	ErrNotConfigured        = errors.New("payment processor not configured")
)

// EventKind is the normalized webhook event vocabulary. Everything the
// processor sends that we don't handle maps to EventUnknown and is
// acknowledged without any state change.
type EventKind string

const (
	EventPaymentSucceeded    EventKind = "payment_succeeded"
	EventCheckoutCompleted   EventKind = "checkout_completed"
	EventSubscriptionDeleted EventKind = "subscription_deleted"
	EventSubscriptionUpdated EventKind = "subscription_updated"
	EventUnknown             EventKind = "unknown"
)

// WebhookEvent is a processor event reduced to the fields the reconciler
// cares about. OccurredAt is the event's own creation time at the processor,
// used for last-write-wins ordering instead of receipt time.
type WebhookEvent struct {
	Kind              EventKind
	EventID           string
	UserID            string
	PlanID            string
	CustomerID        string
	SubscriptionID    string
	PaymentIntentID   string
	Status            string
	CancelAtPeriodEnd bool
	TrialEnd          *time.Time
	CurrentPeriodEnd  *time.Time
	OccurredAt        time.Time
}

// SubscriptionState mirrors the processor's view of a subscription.
type SubscriptionState struct {
	ID                string
	Status            string
	CancelAtPeriodEnd bool
	TrialEnd          *time.Time
	CurrentPeriodEnd  *time.Time
}

// CheckoutResult is the outcome of creating a trial subscription. When the
// initial payment intent needs additional authentication (3-D Secure) the
// caller must resolve ClientSecret before the subscription is live.
type CheckoutResult struct {
	SubscriptionState
	RequiresAction bool
	ClientSecret   string
}

// CheckoutSession is a processor-hosted checkout session, used only for
// after-the-fact payment verification.
type CheckoutSession struct {
	ID            string
	Paid          bool
	CustomerEmail string
	AmountTotal   int64
}

type CreateCustomerParams struct {
	Email  string
	Name   string
	UserID string
}

type CreateSubscriptionParams struct {
	CustomerID string
	PriceID    string
	TrialDays  int64
	UserID     string
	PlanID     string
}

// Provider is the payment-processor abstraction. All calls that can partially
// fail leave processor-side objects in place; compensation is by later
// reconciliation, never by deletes against the processor.
type Provider interface {
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (string, error)
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error

	// EnsureProduct finds an active processor product for the plan's display
	// name, reactivates an inactive one of the same name, or creates a new
	// product. EnsurePrice reuses an existing recurring price only when
	// amount, currency and interval all match the plan.
	EnsureProduct(ctx context.Context, p *plan.Plan) (string, error)
	EnsurePrice(ctx context.Context, productID string, p *plan.Plan) (string, error)

	CreateTrialSubscription(ctx context.Context, params CreateSubscriptionParams) (*CheckoutResult, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionState, error)
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*SubscriptionState, error)
	Resume(ctx context.Context, subscriptionID string) (*SubscriptionState, error)

	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// ParseWebhookEvent verifies the signature over the raw payload before
	// any parsing. A verification failure returns ErrInvalidSignature and the
	// payload must be treated as untrusted.
	ParseWebhookEvent(payload []byte, sigHeader string) (*WebhookEvent, error)
}
