package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/viralblueprint/backend/internal/billing"
	"github.com/viralblueprint/backend/internal/dto"
	"github.com/viralblueprint/backend/internal/plan"
	"github.com/viralblueprint/backend/internal/services"
	"github.com/viralblueprint/backend/internal/session"
)

// BillingHandler exposes the checkout, direct-action and entitlement
// endpoints. configured is false when the payment processor has no API key;
// every processor-touching endpoint then fails fast with a fixed 500, while
// entitlement reads keep working off the local record.
type BillingHandler struct {
	subscriptionService *services.SubscriptionService
	catalog             *plan.Catalog
	returnURL           string
	configured          bool
}

func NewBillingHandler(subscriptionService *services.SubscriptionService, catalog *plan.Catalog, returnURL string, configured bool) *BillingHandler {
	return &BillingHandler{
		subscriptionService: subscriptionService,
		catalog:             catalog,
		returnURL:           returnURL,
		configured:          configured,
	}
}

func (h *BillingHandler) ListPlans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"plans": h.catalog.All()})
}

func (h *BillingHandler) Subscribe(c *fiber.Ctx) error {
	if !h.configured {
		return unconfigured(c)
	}

	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.subscriptionService.StartTrial(c.Context(), userID, session.GetEmail(c), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPlan) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid plan",
			})
		}
		slog.Error("subscription creation failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create subscription",
		})
	}

	return c.JSON(resp)
}

func (h *BillingHandler) Entitlement(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	rec, err := h.subscriptionService.Record(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load subscription",
		})
	}

	resp := dto.EntitlementResponse{Entitled: billing.Entitled(rec)}
	if rec != nil {
		resp.Status = rec.Status
		resp.PlanID = rec.PlanID
		resp.CancelAtPeriodEnd = rec.CancelAtPeriodEnd
		resp.TrialEnd = rec.TrialEnd
		resp.CurrentPeriodEnd = rec.CurrentPeriodEnd
	}
	return c.JSON(resp)
}

// CheckSubscription re-derives status from the processor to self-heal missed
// webhooks, then returns the record with the entitlement verdict.
func (h *BillingHandler) CheckSubscription(c *fiber.Ctx) error {
	if !h.configured {
		return unconfigured(c)
	}

	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	rec, err := h.subscriptionService.Check(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoSubscription) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No subscription found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check subscription",
		})
	}

	return c.JSON(fiber.Map{
		"subscription": rec,
		"entitled":     billing.Entitled(rec),
	})
}

func (h *BillingHandler) Cancel(c *fiber.Ctx) error {
	if !h.configured {
		return unconfigured(c)
	}

	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	rec, err := h.subscriptionService.Cancel(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoSubscription) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No active subscription found",
			})
		}
		slog.Error("subscription cancellation failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to cancel subscription",
		})
	}

	return c.JSON(fiber.Map{
		"message":      "Subscription cancelled",
		"subscription": rec,
	})
}

func (h *BillingHandler) Resume(c *fiber.Ctx) error {
	if !h.configured {
		return unconfigured(c)
	}

	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	rec, err := h.subscriptionService.Resume(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoSubscription) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No active subscription found",
			})
		}
		slog.Error("subscription resume failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to resume subscription",
		})
	}

	return c.JSON(fiber.Map{
		"message":      "Subscription resumed",
		"subscription": rec,
	})
}

func (h *BillingHandler) PortalSession(c *fiber.Ctx) error {
	if !h.configured {
		return unconfigured(c)
	}

	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.PortalRequest
	_ = c.BodyParser(&req)
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = h.returnURL
	}

	url, err := h.subscriptionService.PortalURL(c.Context(), userID, returnURL)
	if err != nil {
		if errors.Is(err, services.ErrNoCustomer) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No customer found",
			})
		}
		slog.Error("portal session creation failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create portal session",
		})
	}

	return c.JSON(dto.PortalResponse{URL: url})
}

func (h *BillingHandler) VerifyPayment(c *fiber.Ctx) error {
	if !h.configured {
		return unconfigured(c)
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "No session ID provided",
		})
	}

	resp, err := h.subscriptionService.VerifyPayment(c.Context(), sessionID)
	if err != nil {
		slog.Error("payment verification failed", "session_id", sessionID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to verify payment",
		})
	}
	if !resp.Verified {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	return c.JSON(resp)
}

func unconfigured(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Payment system is not configured",
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
