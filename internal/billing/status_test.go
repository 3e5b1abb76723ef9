package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viralblueprint/backend/internal/models"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trialing", "trialing", models.StatusTrialing},
		{"active", "active", models.StatusActive},
		{"canceled american spelling", "canceled", models.StatusCancelled},
		{"cancelled british spelling", "cancelled", models.StatusCancelled},
		{"past_due", "past_due", models.StatusPastDue},
		{"incomplete", "incomplete", models.StatusIncomplete},
		{"unknown vendor status maps to incomplete", "incomplete_expired", models.StatusIncomplete},
		{"unpaid maps to incomplete", "unpaid", models.StatusIncomplete},
		{"paused maps to incomplete", "paused", models.StatusIncomplete},
		{"empty maps to incomplete", "", models.StatusIncomplete},
		{"garbage maps to incomplete", "definitely-not-a-status", models.StatusIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeStatus(tt.input))
		})
	}
}

func TestEntitled(t *testing.T) {
	statuses := map[string]bool{
		models.StatusTrialing:   true,
		models.StatusActive:     true,
		models.StatusCancelled:  false,
		models.StatusPastDue:    false,
		models.StatusIncomplete: false,
	}

	// cancel_at_period_end must never affect the verdict: a cancelled-but-
	// not-yet-ended subscription keeps access.
	for status, want := range statuses {
		for _, cancelAtPeriodEnd := range []bool{false, true} {
			sub := &models.Subscription{Status: status, CancelAtPeriodEnd: cancelAtPeriodEnd}
			assert.Equal(t, want, Entitled(sub),
				"status=%s cancel_at_period_end=%v", status, cancelAtPeriodEnd)
		}
	}
}

func TestEntitledNilRecord(t *testing.T) {
	assert.False(t, Entitled(nil))
}
