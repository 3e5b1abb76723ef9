package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/viralblueprint/backend/internal/billing"
	"github.com/viralblueprint/backend/internal/dto"
	"github.com/viralblueprint/backend/internal/models"
	"github.com/viralblueprint/backend/internal/plan"
)

var (
	ErrInvalidPlan    = errors.New("invalid plan")
	ErrNoSubscription = errors.New("no active subscription found")
	ErrNoCustomer     = errors.New("no billing customer found")
)

// SubscriptionService owns the local subscription record and every path that
// writes it: checkout, webhook events, direct actions and on-demand checks.
type SubscriptionService struct {
	db       *gorm.DB
	provider billing.Provider
	catalog  *plan.Catalog
}

func NewSubscriptionService(db *gorm.DB, provider billing.Provider, catalog *plan.Catalog) *SubscriptionService {
	return &SubscriptionService{db: db, provider: provider, catalog: catalog}
}

// Record returns the user's subscription record, or nil when none exists.
func (s *SubscriptionService) Record(userID uuid.UUID) (*models.Subscription, error) {
	var rec models.Subscription
	if err := s.db.Where("user_id = ?", userID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// StartTrial is the checkout flow: resolve the customer, attach the payment
// method, resolve product/price (memoized), create the trial subscription and
// mirror the result locally.
func (s *SubscriptionService) StartTrial(ctx context.Context, userID uuid.UUID, userEmail string, req *dto.SubscribeRequest) (*dto.SubscribeResponse, error) {
	p := s.catalog.Get(req.PlanID)
	if p == nil {
		return nil, ErrInvalidPlan
	}

	rec, err := s.Record(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription record: %w", err)
	}
	if rec == nil {
		rec = &models.Subscription{
			ID:     uuid.New(),
			UserID: userID,
			PlanID: p.ID,
			Status: models.StatusIncomplete,
		}
	}

	// Reuse the processor customer when one exists; otherwise create it and
	// persist the id before going any further, so a failure later in the flow
	// cannot orphan a customer with no local reference.
	if rec.ProcessorCustomerID == "" {
		email := req.Email
		if email == "" {
			email = userEmail
		}
		customerID, err := s.provider.CreateCustomer(ctx, billing.CreateCustomerParams{
			Email:  email,
			Name:   req.Name,
			UserID: userID.String(),
		})
		if err != nil {
			return nil, err
		}
		rec.ProcessorCustomerID = customerID
		if err := s.upsert(rec); err != nil {
			return nil, fmt.Errorf("failed to persist customer reference: %w", err)
		}
	}

	if err := s.provider.AttachPaymentMethod(ctx, rec.ProcessorCustomerID, req.PaymentMethodID); err != nil {
		return nil, err
	}

	priceID, err := s.resolvePrice(ctx, p)
	if err != nil {
		return nil, err
	}

	result, err := s.provider.CreateTrialSubscription(ctx, billing.CreateSubscriptionParams{
		CustomerID: rec.ProcessorCustomerID,
		PriceID:    priceID,
		TrialDays:  p.TrialDays,
		UserID:     userID.String(),
		PlanID:     p.ID,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec.ProcessorSubscriptionID = result.ID
	rec.PlanID = p.ID
	rec.Status = billing.NormalizeStatus(result.Status)
	rec.CancelAtPeriodEnd = false
	rec.CancelledAt = nil
	rec.TrialEnd = result.TrialEnd
	rec.CurrentPeriodEnd = result.CurrentPeriodEnd
	rec.StatusSyncedAt = &now

	// The processor subscription exists at this point. A failed local write
	// is logged and left for the next webhook or on-demand check to repair,
	// not rolled back.
	if err := s.upsert(rec); err != nil {
		slog.Error("subscription created but local record write failed",
			"user_id", userID, "subscription_id", result.ID, "error", err)
	}

	resp := &dto.SubscribeResponse{
		SubscriptionID: result.ID,
		Status:         rec.Status,
		TrialEnd:       result.TrialEnd,
	}
	if result.RequiresAction {
		resp.RequiresAction = true
		resp.ClientSecret = result.ClientSecret
	}
	return resp, nil
}

// resolvePrice returns the processor price id for a plan, preferring the
// locally memoized product/price pair over re-searching the processor.
func (s *SubscriptionService) resolvePrice(ctx context.Context, p *plan.Plan) (string, error) {
	var ref *models.PlanPriceRef
	var loaded models.PlanPriceRef
	err := s.db.Where("plan_id = ?", p.ID).First(&loaded).Error
	if err == nil {
		ref = &loaded
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	priceID, memo, err := resolveCatalogPrice(ctx, s.provider, p, ref)
	if err != nil {
		return "", err
	}
	if memo != nil {
		if err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "plan_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"product_id", "price_id", "unit_amount", "currency", "interval", "updated_at",
			}),
		}).Create(memo).Error; err != nil {
			slog.Error("failed to memoize plan price ref", "plan_id", p.ID, "error", err)
		}
	}
	return priceID, nil
}

// resolveCatalogPrice returns the processor price id for a plan. A memoized
// ref still matching the plan's amount, currency and interval is reused
// without touching the processor; otherwise product and price are ensured
// there and a fresh memo is returned for the caller to persist.
func resolveCatalogPrice(ctx context.Context, provider billing.Provider, p *plan.Plan, ref *models.PlanPriceRef) (string, *models.PlanPriceRef, error) {
	if ref != nil && catalogMatches(ref, p) {
		return ref.PriceID, nil, nil
	}

	productID, err := provider.EnsureProduct(ctx, p)
	if err != nil {
		return "", nil, err
	}
	priceID, err := provider.EnsurePrice(ctx, productID, p)
	if err != nil {
		return "", nil, err
	}

	memo := &models.PlanPriceRef{
		ID:         uuid.New(),
		PlanID:     p.ID,
		ProductID:  productID,
		PriceID:    priceID,
		UnitAmount: p.UnitAmount,
		Currency:   p.Currency,
		Interval:   p.Interval,
	}
	return priceID, memo, nil
}

// ProcessEvent applies a verified webhook event. Unknown kinds and events
// referencing users or subscriptions we have no record of are acknowledged
// without error so the processor stops retrying them.
func (s *SubscriptionService) ProcessEvent(ev *billing.WebhookEvent) error {
	switch ev.Kind {
	case billing.EventPaymentSucceeded, billing.EventCheckoutCompleted:
		return s.applyUserEvent(ev)
	case billing.EventSubscriptionDeleted, billing.EventSubscriptionUpdated:
		return s.applySubscriptionEvent(ev)
	default:
		return nil
	}
}

func (s *SubscriptionService) applyUserEvent(ev *billing.WebhookEvent) error {
	if ev.UserID == "" {
		slog.Warn("webhook event missing user_id metadata", "kind", ev.Kind, "event_id", ev.EventID)
		return nil
	}
	userID, err := uuid.Parse(ev.UserID)
	if err != nil {
		slog.Warn("webhook event has malformed user_id metadata", "kind", ev.Kind, "user_id", ev.UserID)
		return nil
	}

	rec, err := s.Record(userID)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &models.Subscription{
			ID:     uuid.New(),
			UserID: userID,
			Status: models.StatusIncomplete,
		}
	}

	if !applyEvent(rec, ev) {
		return nil
	}
	return s.upsert(rec)
}

func (s *SubscriptionService) applySubscriptionEvent(ev *billing.WebhookEvent) error {
	var rec models.Subscription
	err := s.db.Where("processor_subscription_id = ?", ev.SubscriptionID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("webhook event for unknown subscription", "kind", ev.Kind, "subscription_id", ev.SubscriptionID)
			return nil
		}
		return err
	}

	if !applyEvent(&rec, ev) {
		return nil
	}
	return s.upsert(&rec)
}

// Check returns the user's record after re-deriving status from the
// processor. Webhooks are not delivery-guaranteed across extended downtime;
// this is the self-heal path.
func (s *SubscriptionService) Check(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	rec, err := s.Record(userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoSubscription
	}
	if rec.ProcessorSubscriptionID == "" {
		return rec, nil
	}

	state, err := s.provider.GetSubscription(ctx, rec.ProcessorSubscriptionID)
	if err != nil {
		// The record stays usable on a failed processor call; entitlement
		// follows the last known local state.
		slog.Error("on-demand subscription check failed", "user_id", userID, "error", err)
		return rec, nil
	}

	if applyProcessorState(rec, state) {
		now := time.Now().UTC()
		rec.StatusSyncedAt = &now
		if err := s.upsert(rec); err != nil {
			slog.Error("failed to persist reconciled subscription", "user_id", userID, "error", err)
		}
	}
	return rec, nil
}

// Cancel requests cancellation at period end. The user keeps access until the
// current period elapses. Repeat calls are harmless.
func (s *SubscriptionService) Cancel(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	rec, err := s.Record(userID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.ProcessorSubscriptionID == "" {
		return nil, ErrNoSubscription
	}
	if rec.Status == models.StatusCancelled {
		return rec, nil
	}

	state, err := s.provider.CancelAtPeriodEnd(ctx, rec.ProcessorSubscriptionID)
	if err != nil {
		if errors.Is(err, billing.ErrSubscriptionNotFound) {
			return nil, ErrNoSubscription
		}
		return nil, err
	}

	applyCancelState(rec, state, time.Now().UTC())
	if err := s.upsert(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Resume clears a pending cancellation. Valid only while the period has not
// elapsed; a subscription that already ended is not silently recreated.
func (s *SubscriptionService) Resume(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	rec, err := s.Record(userID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.ProcessorSubscriptionID == "" || rec.Status == models.StatusCancelled {
		return nil, ErrNoSubscription
	}

	state, err := s.provider.Resume(ctx, rec.ProcessorSubscriptionID)
	if err != nil {
		if errors.Is(err, billing.ErrSubscriptionNotFound) {
			return nil, ErrNoSubscription
		}
		return nil, err
	}

	applyResumeState(rec, state, time.Now().UTC())
	if err := s.upsert(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// PortalURL creates a processor-hosted billing portal session for payment
// method updates. No card data touches this system and no local state
// changes.
func (s *SubscriptionService) PortalURL(ctx context.Context, userID uuid.UUID, returnURL string) (string, error) {
	rec, err := s.Record(userID)
	if err != nil {
		return "", err
	}
	if rec == nil || rec.ProcessorCustomerID == "" {
		return "", ErrNoCustomer
	}
	return s.provider.CreatePortalSession(ctx, rec.ProcessorCustomerID, returnURL)
}

// VerifyPayment reports whether a processor checkout session was paid.
func (s *SubscriptionService) VerifyPayment(ctx context.Context, sessionID string) (*dto.VerifyPaymentResponse, error) {
	session, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &dto.VerifyPaymentResponse{
		Verified:      session.Paid,
		CustomerEmail: session.CustomerEmail,
		Amount:        session.AmountTotal,
	}, nil
}

// upsert writes the record keyed by user_id. Concurrent writers (webhook vs
// direct action vs check) race benignly: each write sets absolute state.
func (s *SubscriptionService) upsert(rec *models.Subscription) error {
	rec.UpdatedAt = time.Now().UTC()
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"processor_customer_id", "processor_subscription_id", "processor_payment_intent_id",
			"plan_id", "status", "cancel_at_period_end",
			"trial_end", "current_period_end", "cancelled_at", "status_synced_at", "updated_at",
		}),
	}).Create(rec).Error
}
