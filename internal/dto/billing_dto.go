package dto

import "time"

type SubscribeRequest struct {
	PlanID          string `json:"plan_id"`
	PaymentMethodID string `json:"payment_method_id"`
	Email           string `json:"email,omitempty"`
	Name            string `json:"name,omitempty"`
}

// SubscribeResponse reports either a created subscription or a pending one
// that needs the client to resolve additional authentication first.
type SubscribeResponse struct {
	SubscriptionID string     `json:"subscription_id"`
	Status         string     `json:"status"`
	TrialEnd       *time.Time `json:"trial_end,omitempty"`
	RequiresAction bool       `json:"requires_action,omitempty"`
	ClientSecret   string     `json:"client_secret,omitempty"`
}

type EntitlementResponse struct {
	Entitled          bool       `json:"entitled"`
	Status            string     `json:"status,omitempty"`
	PlanID            string     `json:"plan_id,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end,omitempty"`
	TrialEnd          *time.Time `json:"trial_end,omitempty"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
}

type PortalRequest struct {
	ReturnURL string `json:"return_url,omitempty"`
}

type PortalResponse struct {
	URL string `json:"url"`
}

type VerifyPaymentResponse struct {
	Verified      bool   `json:"verified"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Amount        int64  `json:"amount,omitempty"`
}
