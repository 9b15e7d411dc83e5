package handlers

import (
	"strconv"

	"lexpay/internal/services/commission"
	"lexpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CommissionHandler struct {
	service commission.Service
}

func NewCommissionHandler(service commission.Service) *CommissionHandler {
	return &CommissionHandler{service: service}
}

// GetActiveConfig returns the currently active rate table.
func (h *CommissionHandler) GetActiveConfig(c *fiber.Ctx) error {
	table, err := h.service.Current(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, table)
}

// Preview resolves the rate and commission for a hypothetical earning
// without touching any record. Lets an admin sanity-check a config.
func (h *CommissionHandler) Preview(c *fiber.Ctx) error {
	var input struct {
		GrossAmount      float64 `json:"gross_amount"`
		ConsultationType string  `json:"consultation_type"`
		LawyerTier       string  `json:"lawyer_tier"`
		SubscriptionTier string  `json:"subscription_tier"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.GrossAmount <= 0 {
		return utils.BadRequest(c, "gross_amount must be positive")
	}

	table, err := h.service.Current(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	rate := table.ResolveRate(input.ConsultationType, input.LawyerTier, input.SubscriptionTier)
	cut := table.CommissionFor(input.GrossAmount, input.ConsultationType, input.LawyerTier, input.SubscriptionTier)

	return utils.Success(c, fiber.Map{
		"version":           table.Version,
		"rate":              rate,
		"commission_amount": cut,
		"net_amount":        input.GrossAmount - cut,
	})
}

// UpdateConfig replaces the commission config with a new version.
func (h *CommissionHandler) UpdateConfig(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input commission.UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	input.ActorID = claims.UserID
	input.ActorIP = c.IP()

	cfg, err := h.service.Update(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, cfg)
}

// GetHistory lists past commission config changes, newest first.
func (h *CommissionHandler) GetHistory(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	history, err := h.service.History(c.Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"history": history})
}
