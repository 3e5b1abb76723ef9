package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/viralblueprint/backend/internal/billing"
	"github.com/viralblueprint/backend/internal/dto"
	"github.com/viralblueprint/backend/internal/services"
)

// WebhookHandler receives processor notifications. The route is mounted
// outside the JWT group; authenticity comes from the signature check alone.
type WebhookHandler struct {
	provider            billing.Provider
	subscriptionService *services.SubscriptionService
}

func NewWebhookHandler(provider billing.Provider, subscriptionService *services.SubscriptionService) *WebhookHandler {
	return &WebhookHandler{
		provider:            provider,
		subscriptionService: subscriptionService,
	}
}

// HandleStripe verifies the signed payload, normalizes it and hands it to the
// reconciler. A failed signature check rejects the request before any state
// is touched. Processing failures return 500 so the processor retries the
// delivery.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	if h.provider == nil {
		return unconfigured(c)
	}

	ev, err := h.provider.ParseWebhookEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid signature",
			})
		}
		slog.Error("webhook payload rejected", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid payload",
		})
	}

	if err := h.subscriptionService.ProcessEvent(ev); err != nil {
		slog.Error("webhook processing failed", "event_id", ev.EventID, "kind", ev.Kind, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process event",
		})
	}

	return c.JSON(fiber.Map{"received": true})
}
