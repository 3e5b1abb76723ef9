package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v74"
	portalsession "github.com/stripe/stripe-go/v74/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/customer"
	"github.com/stripe/stripe-go/v74/paymentmethod"
	"github.com/stripe/stripe-go/v74/price"
	"github.com/stripe/stripe-go/v74/product"
	sub "github.com/stripe/stripe-go/v74/subscription"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/viralblueprint/backend/internal/plan"
)

// StripeProvider implements Provider against Stripe.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider sets the global Stripe key and returns the provider.
// apiKey is the secret key (sk_test_/sk_live_), webhookSecret the signing
// secret (whsec_) for inbound event verification.
func NewStripeProvider(apiKey, webhookSecret string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{webhookSecret: webhookSecret}
}

func (s *StripeProvider) CreateCustomer(ctx context.Context, params CreateCustomerParams) (string, error) {
	custParams := &stripe.CustomerParams{
		Email: stripe.String(params.Email),
	}
	if params.Name != "" {
		custParams.Name = stripe.String(params.Name)
	}
	custParams.AddMetadata("user_id", params.UserID)

	c, err := customer.New(custParams)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return c.ID, nil
}

func (s *StripeProvider) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	_, err := paymentmethod.Attach(paymentMethodID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	})
	if err != nil {
		return fmt.Errorf("failed to attach payment method: %w", err)
	}

	_, err = customer.Update(customerID, &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to set default payment method: %w", err)
	}
	return nil
}

// EnsureProduct reuses an active product matching the plan's display name,
// reactivates an inactive one, or creates a new product. Retried checkouts
// and redeploys therefore never duplicate catalog entries.
func (s *StripeProvider) EnsureProduct(ctx context.Context, p *plan.Plan) (string, error) {
	activeParams := &stripe.ProductSearchParams{
		SearchParams: stripe.SearchParams{
			Query: fmt.Sprintf(`name:"%s" AND active:"true"`, p.Name),
			Limit: stripe.Int64(1),
		},
	}
	iter := product.Search(activeParams)
	if iter.Next() {
		return iter.Product().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("product search failed: %w", err)
	}

	anyParams := &stripe.ProductSearchParams{
		SearchParams: stripe.SearchParams{
			Query: fmt.Sprintf(`name:"%s"`, p.Name),
			Limit: stripe.Int64(1),
		},
	}
	iter = product.Search(anyParams)
	if iter.Next() {
		existing := iter.Product()
		if !existing.Active {
			updated, err := product.Update(existing.ID, &stripe.ProductParams{
				Active:      stripe.Bool(true),
				Description: stripe.String(planDescription(p)),
			})
			if err != nil {
				return "", fmt.Errorf("failed to reactivate product: %w", err)
			}
			return updated.ID, nil
		}
		return existing.ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("product search failed: %w", err)
	}

	createParams := &stripe.ProductParams{
		Name:        stripe.String(p.Name),
		Description: stripe.String(planDescription(p)),
		Active:      stripe.Bool(true),
	}
	createParams.AddMetadata("plan_id", p.ID)

	created, err := product.New(createParams)
	if err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}
	return created.ID, nil
}

// EnsurePrice reuses the product's active recurring price only when amount,
// currency and interval all still match the plan. A stale price is never
// silently reused.
func (s *StripeProvider) EnsurePrice(ctx context.Context, productID string, p *plan.Plan) (string, error) {
	listParams := &stripe.PriceListParams{
		Product: stripe.String(productID),
		Active:  stripe.Bool(true),
		Type:    stripe.String("recurring"),
	}
	listParams.Limit = stripe.Int64(1)

	iter := price.List(listParams)
	if iter.Next() {
		existing := iter.Price()
		if existing.UnitAmount == p.UnitAmount &&
			string(existing.Currency) == p.Currency &&
			existing.Recurring != nil &&
			string(existing.Recurring.Interval) == p.Interval {
			return existing.ID, nil
		}
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("price list failed: %w", err)
	}

	createParams := &stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(p.UnitAmount),
		Currency:   stripe.String(p.Currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(p.Interval),
		},
	}
	createParams.AddMetadata("plan_id", p.ID)

	created, err := price.New(createParams)
	if err != nil {
		return "", fmt.Errorf("failed to create price: %w", err)
	}
	return created.ID, nil
}

func (s *StripeProvider) CreateTrialSubscription(ctx context.Context, params CreateSubscriptionParams) (*CheckoutResult, error) {
	subParams := &stripe.SubscriptionParams{
		Customer: stripe.String(params.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{
				Price:    stripe.String(params.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		TrialPeriodDays: stripe.Int64(params.TrialDays),
		TrialSettings: &stripe.SubscriptionTrialSettingsParams{
			EndBehavior: &stripe.SubscriptionTrialSettingsEndBehaviorParams{
				MissingPaymentMethod: stripe.String("cancel"),
			},
		},
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
			PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		},
	}
	subParams.AddMetadata("user_id", params.UserID)
	subParams.AddMetadata("plan_id", params.PlanID)
	subParams.AddExpand("latest_invoice.payment_intent")

	created, err := sub.New(subParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	result := &CheckoutResult{SubscriptionState: mapSubscription(created)}
	if created.LatestInvoice != nil && created.LatestInvoice.PaymentIntent != nil {
		pi := created.LatestInvoice.PaymentIntent
		if pi.Status == stripe.PaymentIntentStatusRequiresAction {
			result.RequiresAction = true
			result.ClientSecret = pi.ClientSecret
		}
	}
	return result, nil
}

func (s *StripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionState, error) {
	current, err := sub.Get(subscriptionID, nil)
	if err != nil {
		return nil, mapSubscriptionError(err)
	}
	state := mapSubscription(current)
	return &state, nil
}

func (s *StripeProvider) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*SubscriptionState, error) {
	updated, err := sub.Update(subscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return nil, mapSubscriptionError(err)
	}
	state := mapSubscription(updated)
	return &state, nil
}

func (s *StripeProvider) Resume(ctx context.Context, subscriptionID string) (*SubscriptionState, error) {
	updated, err := sub.Update(subscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(false),
	})
	if err != nil {
		return nil, mapSubscriptionError(err)
	}
	state := mapSubscription(updated)
	return &state, nil
}

func (s *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	created, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return created.URL, nil
}

func (s *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	session, err := checkoutsession.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	email := session.CustomerEmail
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		email = session.CustomerDetails.Email
	}

	return &CheckoutSession{
		ID:            session.ID,
		Paid:          session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		CustomerEmail: email,
		AmountTotal:   session.AmountTotal,
	}, nil
}

// ParseWebhookEvent verifies the HMAC signature over the raw payload and maps
// the event into the normalized WebhookEvent form. Nothing is parsed until
// the signature checks out.
func (s *StripeProvider) ParseWebhookEvent(payload []byte, sigHeader string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	ev := &WebhookEvent{
		Kind:       EventUnknown,
		EventID:    event.ID,
		OccurredAt: time.Unix(event.Created, 0),
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to parse payment intent: %w", err)
		}
		ev.Kind = EventPaymentSucceeded
		ev.PaymentIntentID = pi.ID
		ev.UserID = pi.Metadata["user_id"]
		ev.PlanID = pi.Metadata["plan_id"]

	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to parse checkout session: %w", err)
		}
		ev.Kind = EventCheckoutCompleted
		ev.UserID = session.Metadata["user_id"]
		ev.PlanID = session.Metadata["plan_id"]
		if session.Customer != nil {
			ev.CustomerID = session.Customer.ID
		}
		if session.Subscription != nil {
			ev.SubscriptionID = session.Subscription.ID
		}

	case "customer.subscription.deleted", "customer.subscription.updated":
		var subscription stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
			return nil, fmt.Errorf("failed to parse subscription: %w", err)
		}
		if event.Type == "customer.subscription.deleted" {
			ev.Kind = EventSubscriptionDeleted
		} else {
			ev.Kind = EventSubscriptionUpdated
		}
		ev.SubscriptionID = subscription.ID
		ev.Status = string(subscription.Status)
		ev.CancelAtPeriodEnd = subscription.CancelAtPeriodEnd
		ev.TrialEnd = unixToTime(subscription.TrialEnd)
		ev.CurrentPeriodEnd = unixToTime(subscription.CurrentPeriodEnd)
		ev.UserID = subscription.Metadata["user_id"]
		ev.PlanID = subscription.Metadata["plan_id"]
	}

	return ev, nil
}

func mapSubscription(s *stripe.Subscription) SubscriptionState {
	return SubscriptionState{
		ID:                s.ID,
		Status:            string(s.Status),
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		TrialEnd:          unixToTime(s.TrialEnd),
		CurrentPeriodEnd:  unixToTime(s.CurrentPeriodEnd),
	}
}

func mapSubscriptionError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
		return ErrSubscriptionNotFound
	}
	return fmt.Errorf("processor call failed: %w", err)
}

func planDescription(p *plan.Plan) string {
	features := p.Features
	if len(features) > 3 {
		features = features[:3]
	}
	return strings.Join(features, ", ")
}

func unixToTime(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0)
	return &t
}
