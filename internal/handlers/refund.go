package handlers

import (
	"strconv"

	"lexpay/internal/services/refund"
	"lexpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type RefundHandler struct {
	service refund.Service
}

func NewRefundHandler(service refund.Service) *RefundHandler {
	return &RefundHandler{service: service}
}

// RequestRefund opens a refund case against a client payment.
func (h *RefundHandler) RequestRefund(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input struct {
		PaymentID      string  `json:"payment_id"`
		ConsultationID string  `json:"consultation_id"`
		UserID         uint    `json:"user_id"`
		Amount         float64 `json:"amount"`
		Currency       string  `json:"currency"`
		ReasonCode     string  `json:"reason_code"`
		Reason         string  `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	r, err := h.service.Request(c.Context(), refund.RequestInput{
		PaymentID:      input.PaymentID,
		ConsultationID: input.ConsultationID,
		UserID:         input.UserID,
		Amount:         input.Amount,
		Currency:       input.Currency,
		ReasonCode:     input.ReasonCode,
		Reason:         input.Reason,
		ActorID:        claims.UserID,
		ActorIP:        c.IP(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, r)
}

// ApproveRefund approves a pending refund.
func (h *RefundHandler) ApproveRefund(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	refundID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "Invalid refund ID")
	}

	var input struct {
		Note string `json:"note"`
	}
	_ = c.BodyParser(&input) // note is optional

	r, err := h.service.Approve(c.Context(), uint(refundID), claims.UserID, input.Note)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, r)
}

// RejectRefund rejects a pending refund. A reason is required.
func (h *RefundHandler) RejectRefund(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	refundID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "Invalid refund ID")
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	r, err := h.service.Reject(c.Context(), uint(refundID), claims.UserID, input.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, r)
}

// ExecuteRefund pushes an approved refund through the payment rail.
func (h *RefundHandler) ExecuteRefund(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	refundID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "Invalid refund ID")
	}

	r, err := h.service.Execute(c.Context(), uint(refundID), claims.UserID)
	if err != nil {
		if r != nil {
			return utils.Respond(c, fiber.StatusBadGateway, fiber.Map{
				"error":  err.Error(),
				"refund": r,
			})
		}
		return respondError(c, err)
	}
	return utils.Success(c, r)
}

// GetRefund returns one refund by ID.
func (h *RefundHandler) GetRefund(c *fiber.Ctx) error {
	refundID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "Invalid refund ID")
	}

	r, err := h.service.Get(c.Context(), uint(refundID))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, r)
}

// ListRefunds lists refunds, optionally filtered by status.
func (h *RefundHandler) ListRefunds(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	refunds, err := h.service.List(c.Context(), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"refunds": refunds})
}
