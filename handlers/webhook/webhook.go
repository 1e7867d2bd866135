package webhook

import (
	"errors"
	"time"

	"github.com/craftclass/storefront-api/services"
	"github.com/craftclass/storefront-api/utils/response"
	"github.com/craftclass/storefront-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// WebhookHandler receives the externally-delivered events that drive
// attribution: order settlements from the payment collaborator and
// registrations from the instructor-registration collaborator. Both arrive
// at-least-once; the ledger's natural keys absorb duplicates, and a storage
// failure answers 500 so the channel redelivers.
type WebhookHandler struct {
	attribution *services.AttributionService
	billing     *services.BillingService
	validator   *validation.Validator
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(attribution *services.AttributionService, billing *services.BillingService) *WebhookHandler {
	return &WebhookHandler{
		attribution: attribution,
		billing:     billing,
		validator:   validation.NewValidator(),
	}
}

// OrderSettled handles POST /api/v1/webhooks/order-settled
func (h *WebhookHandler) OrderSettled(c *fiber.Ctx) error {
	var event services.OrderSettledEvent
	if err := c.BodyParser(&event); err != nil {
		return response.BadRequest(c, "Invalid event payload")
	}

	if err := h.validator.ValidateStruct(event); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.attribution.HandleOrderSettled(c.Context(), event); err != nil {
		// Signals the at-least-once channel to redeliver
		return response.InternalServerError(c, "Failed to process settlement")
	}

	return response.Accepted(c, "Order settlement processed")
}

// InstructorRegistered handles POST /api/v1/webhooks/instructor-registered
func (h *WebhookHandler) InstructorRegistered(c *fiber.Ctx) error {
	var event services.InstructorRegisteredEvent
	if err := c.BodyParser(&event); err != nil {
		return response.BadRequest(c, "Invalid event payload")
	}

	if err := h.validator.ValidateStruct(event); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.attribution.HandleInstructorRegistered(c.Context(), event); err != nil {
		return response.InternalServerError(c, "Failed to process registration")
	}

	// First successful registration starts the billing cycle. A duplicate
	// delivery finds the instructor already active and is a no-op.
	if err := h.billing.Activate(c.Context(), event.InstructorID, time.Now()); err != nil {
		if !errors.Is(err, services.ErrInstructorNotFound) && !errors.Is(err, services.ErrInvalidTransition) {
			return response.InternalServerError(c, "Failed to activate subscription")
		}
	}

	return response.Accepted(c, "Instructor registration processed")
}
