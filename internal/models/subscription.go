package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription status values, normalized from the payment processor's
// vocabulary by billing.NormalizeStatus. Nothing outside this set is ever
// written to the status column.
const (
	StatusTrialing   = "trialing"
	StatusActive     = "active"
	StatusCancelled  = "cancelled"
	StatusPastDue    = "past_due"
	StatusIncomplete = "incomplete"
)

// Subscription is the local entitlement record, one row per user. The
// processor is authoritative for payment state; this row is authoritative for
// access gating, and the two are kept convergent by webhooks and on-demand
// checks. Writes are upserts keyed by user_id, never by
// processor_subscription_id alone, which changes when the user resubscribes.
type Subscription struct {
	ID                       uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID                   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	ProcessorCustomerID      string     `gorm:"size:255;index" json:"processor_customer_id,omitempty"`
	ProcessorSubscriptionID  string     `gorm:"size:255;index" json:"processor_subscription_id,omitempty"`
	ProcessorPaymentIntentID string     `gorm:"size:255" json:"-"`
	PlanID                   string     `gorm:"size:50;not null" json:"plan_id"`
	Status                   string     `gorm:"size:50;not null;default:'incomplete'" json:"status"`
	CancelAtPeriodEnd        bool       `gorm:"default:false" json:"cancel_at_period_end"`
	TrialEnd                 *time.Time `json:"trial_end,omitempty"`
	CurrentPeriodEnd         *time.Time `json:"current_period_end,omitempty"`
	CancelledAt              *time.Time `json:"cancelled_at,omitempty"`
	// StatusSyncedAt is the logical timestamp of the last applied processor
	// event. Webhook deliveries older than this watermark are dropped so a
	// late retry cannot regress status to a stale value.
	StatusSyncedAt *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	User           User       `gorm:"foreignKey:UserID" json:"-"`
}

func (Subscription) TableName() string {
	return "user_subscriptions"
}
