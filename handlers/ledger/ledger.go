package ledger

import (
	"errors"
	"strconv"

	"github.com/craftclass/storefront-api/services"
	"github.com/craftclass/storefront-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// LedgerHandler exposes the read side of the commission ledger to the admin
// and instructor dashboards, plus the payout flag for the external payout
// batch. All writes to the ledger itself go through the attribution path.
type LedgerHandler struct {
	ledgerService    *services.LedgerService
	directoryService *services.DirectoryService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *services.LedgerService, directoryService *services.DirectoryService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService:    ledgerService,
		directoryService: directoryService,
	}
}

// GetInstructor handles GET /api/v1/instructors/:id
// Returns the instructor record with its cached counters.
func (h *LedgerHandler) GetInstructor(c *fiber.Ctx) error {
	instructorID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid instructor ID")
	}

	instructor, err := h.directoryService.Get(c.Context(), uint(instructorID))
	if err != nil {
		if errors.Is(err, services.ErrInstructorNotFound) {
			return response.NotFound(c, "Instructor not found")
		}
		return response.InternalServerError(c, "Failed to load instructor")
	}

	return response.Success(c, instructor.ToResponse())
}

// ListByInstructor handles GET /api/v1/instructors/:id/commissions
func (h *LedgerHandler) ListByInstructor(c *fiber.Ctx) error {
	instructorID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid instructor ID")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	entries, total, err := h.ledgerService.ListByInstructor(c.Context(), uint(instructorID), limit, (page-1)*limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list commission entries")
	}

	return response.Paginated(c, entries, response.CalculatePagination(page, limit, total))
}

// ListByOrder handles GET /api/v1/orders/:id/commissions
func (h *LedgerHandler) ListByOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if orderID == "" {
		return response.BadRequest(c, "Invalid order ID")
	}

	entries, err := h.ledgerService.ListByOrder(c.Context(), orderID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list commission entries")
	}

	return response.Success(c, fiber.Map{
		"order_id": orderID,
		"entries":  entries,
	})
}

// Totals handles GET /api/v1/commissions/totals
// Aggregates the whole ledger by commission type.
func (h *LedgerHandler) Totals(c *fiber.Ctx) error {
	totals, err := h.ledgerService.TotalsByType(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to aggregate ledger totals")
	}

	return response.Success(c, fiber.Map{"totals": totals})
}

type payoutRequest struct {
	EntryIDs []string `json:"entry_ids"`
}

// MarkPaidOut handles POST /api/v1/commissions/payout
// Flags entries as paid out on behalf of the external payout batch.
func (h *LedgerHandler) MarkPaidOut(c *fiber.Ctx) error {
	var req payoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid payout request")
	}
	if len(req.EntryIDs) == 0 {
		return response.BadRequest(c, "entry_ids must not be empty")
	}

	updated, err := h.ledgerService.MarkPaidOut(c.Context(), req.EntryIDs)
	if err != nil {
		return response.InternalServerError(c, "Failed to mark entries paid out")
	}

	return response.SuccessWithMessage(c, "Entries marked paid out", fiber.Map{
		"requested": len(req.EntryIDs),
		"updated":   updated,
	})
}
