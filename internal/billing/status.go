package billing

import "github.com/viralblueprint/backend/internal/models"

// NormalizeStatus maps the processor's status vocabulary onto the local enum.
// Every status write in every entry point (webhook, direct action, on-demand
// check) goes through this table. Anything outside the known set maps to
// incomplete so the access gate never reasons about vendor vocabulary.
func NormalizeStatus(processorStatus string) string {
	switch processorStatus {
	case "trialing":
		return models.StatusTrialing
	case "active":
		return models.StatusActive
	case "canceled", "cancelled":
		return models.StatusCancelled
	case "past_due":
		return models.StatusPastDue
	case "incomplete":
		return models.StatusIncomplete
	default:
		return models.StatusIncomplete
	}
}

// Entitled is the single entitlement predicate. A user has access while
// trialing or active, regardless of cancel_at_period_end: cancelling keeps
// access until the paid period actually ends. A nil record means no access.
//
// Do not reimplement this check anywhere else.
func Entitled(sub *models.Subscription) bool {
	if sub == nil {
		return false
	}
	return sub.Status == models.StatusTrialing || sub.Status == models.StatusActive
}
