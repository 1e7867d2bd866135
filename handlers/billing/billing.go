package billing

import (
	"errors"
	"strconv"
	"time"

	"github.com/craftclass/storefront-api/model"
	"github.com/craftclass/storefront-api/services"
	"github.com/craftclass/storefront-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// BillingHandler exposes the renewal trigger (driven by an external
// scheduler) and the admin-side subscription status changes.
type BillingHandler struct {
	billingService *services.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *services.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// Renew handles POST /api/v1/billing/renew/:id
// Safe against duplicate trigger firing: a renewal only happens once the
// billing period has actually elapsed.
func (h *BillingHandler) Renew(c *fiber.Ctx) error {
	instructorID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid instructor ID")
	}

	renewed, err := h.billingService.Renew(c.Context(), uint(instructorID), time.Now())
	if err != nil {
		if errors.Is(err, services.ErrInstructorNotFound) {
			return response.NotFound(c, "Instructor not found")
		}
		if errors.Is(err, services.ErrNotActive) {
			return response.Conflict(c, "Subscription is not active")
		}
		return response.InternalServerError(c, "Failed to renew subscription")
	}

	if !renewed {
		return response.SuccessWithMessage(c, "Billing period not yet elapsed", fiber.Map{"renewed": false})
	}
	return response.SuccessWithMessage(c, "Subscription renewed", fiber.Map{"renewed": true})
}

type statusRequest struct {
	Status model.SubscriptionStatus `json:"status"`
}

// SetStatus handles PATCH /api/v1/instructors/:id/status
// Admin-driven transitions: active <-> inactive, active -> canceled.
func (h *BillingHandler) SetStatus(c *fiber.Ctx) error {
	instructorID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid instructor ID")
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid status request")
	}

	switch req.Status {
	case model.SubscriptionActive, model.SubscriptionInactive, model.SubscriptionCanceled:
	default:
		return response.BadRequest(c, "Unknown subscription status")
	}

	if err := h.billingService.SetStatus(c.Context(), uint(instructorID), req.Status); err != nil {
		if errors.Is(err, services.ErrInstructorNotFound) {
			return response.NotFound(c, "Instructor not found")
		}
		if errors.Is(err, services.ErrInvalidTransition) {
			return response.Conflict(c, "Status transition not allowed")
		}
		return response.InternalServerError(c, "Failed to update subscription status")
	}

	return response.SuccessWithMessage(c, "Subscription status updated", fiber.Map{"status": req.Status})
}
