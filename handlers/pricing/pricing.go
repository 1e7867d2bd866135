package pricing

import (
	"strconv"
	"time"

	"github.com/craftclass/storefront-api/handlers/referral"
	"github.com/craftclass/storefront-api/services"
	"github.com/craftclass/storefront-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// PricingHandler quotes effective unit prices for the storefront pages.
type PricingHandler struct {
	pricingService *services.PricingService
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(pricingService *services.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

// Quote handles GET /api/v1/pricing/quote?base_cents=N
// Returns the effective price for the shopper's current referral session.
// The session is read from the cookie and passed in explicitly; the quote is
// a snapshot, later session changes never reprice an already-placed order.
func (h *PricingHandler) Quote(c *fiber.Ctx) error {
	baseCents, err := strconv.ParseInt(c.Query("base_cents"), 10, 64)
	if err != nil || baseCents < 0 {
		return response.BadRequest(c, "base_cents must be a non-negative integer")
	}

	now := time.Now()
	session := referral.ReadSession(c)
	effective := h.pricingService.EffectivePrice(baseCents, session, now)

	code, active := session.ActiveCode(now)

	return response.Success(c, fiber.Map{
		"base_cents":      baseCents,
		"effective_cents": effective,
		"referral_code":   code,
		"discounted":      active,
	})
}
