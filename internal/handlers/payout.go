package handlers

import (
	"strconv"

	"lexpay/internal/services/payout"
	"lexpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type PayoutHandler struct {
	service payout.Service
}

func NewPayoutHandler(service payout.Service) *PayoutHandler {
	return &PayoutHandler{service: service}
}

// ProcessPayout settles one lawyer's accrued earnings.
func (h *PayoutHandler) ProcessPayout(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input struct {
		LawyerID uint   `json:"lawyer_id"`
		Method   string `json:"method"`
		Notes    string `json:"notes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.LawyerID == 0 {
		return utils.BadRequest(c, "lawyer_id is required")
	}

	result, err := h.service.Process(c.Context(), payout.ProcessRequest{
		LawyerID: input.LawyerID,
		Method:   input.Method,
		Notes:    input.Notes,
		ActorID:  claims.UserID,
		ActorIP:  c.IP(),
	})
	if err != nil {
		// A rail failure still creates the payout record; surface both.
		if result != nil && result.Payout != nil {
			return utils.Respond(c, fiber.StatusBadGateway, fiber.Map{
				"error":  err.Error(),
				"payout": result.Payout,
			})
		}
		return respondError(c, err)
	}

	return utils.Created(c, result)
}

// ProcessBulkPayout settles a batch of lawyers with partial-failure
// semantics. The response always enumerates per-item outcomes.
func (h *PayoutHandler) ProcessBulkPayout(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input struct {
		Items []payout.BulkItem `json:"items"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if len(input.Items) == 0 {
		return utils.BadRequest(c, "items is required")
	}

	result, err := h.service.ProcessBulk(c.Context(), input.Items, claims.UserID, c.IP())
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, result)
}

// ResubmitPayout retries the rail call for a failed payout.
func (h *PayoutHandler) ResubmitPayout(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	payoutID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "Invalid payout ID")
	}

	result, err := h.service.Resubmit(c.Context(), uint(payoutID), claims.UserID)
	if err != nil {
		if result != nil && result.Payout != nil {
			return utils.Respond(c, fiber.StatusBadGateway, fiber.Map{
				"error":  err.Error(),
				"payout": result.Payout,
			})
		}
		return respondError(c, err)
	}
	return utils.Success(c, result)
}

// CancelPayout voids a failed payout and releases its earnings.
func (h *PayoutHandler) CancelPayout(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	payoutID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "Invalid payout ID")
	}

	if err := h.service.Cancel(c.Context(), uint(payoutID), claims.UserID); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "Payout cancelled"})
}

// GetPayout returns one payout by ID.
func (h *PayoutHandler) GetPayout(c *fiber.Ctx) error {
	payoutID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "Invalid payout ID")
	}

	p, err := h.service.Get(c.Context(), uint(payoutID))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, p)
}

// GetPayoutByReference returns one payout by its reference ID, the
// identifier handed to the payment rail.
func (h *PayoutHandler) GetPayoutByReference(c *fiber.Ctx) error {
	reference := c.Params("reference")
	if reference == "" {
		return utils.BadRequest(c, "Invalid payout reference")
	}

	p, err := h.service.GetByReference(c.Context(), reference)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, p)
}

// ListLawyerPayouts lists one lawyer's payouts.
func (h *PayoutHandler) ListLawyerPayouts(c *fiber.Ctx) error {
	lawyerID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "Invalid lawyer ID")
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	payouts, err := h.service.ListByLawyer(c.Context(), uint(lawyerID), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"payouts": payouts})
}

// ListPayouts lists payouts, optionally filtered by status.
func (h *PayoutHandler) ListPayouts(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	payouts, err := h.service.List(c.Context(), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"payouts": payouts})
}
