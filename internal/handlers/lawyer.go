package handlers

import (
	"strconv"
	"time"

	"lexpay/internal/models"
	"lexpay/internal/repositories"
	"lexpay/internal/services/audit"
	"lexpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type LawyerHandler struct {
	lawyers  repositories.LawyerRepository
	earnings repositories.EarningRepository
	recorder audit.Recorder
}

func NewLawyerHandler(lawyers repositories.LawyerRepository, earnings repositories.EarningRepository, recorder audit.Recorder) *LawyerHandler {
	return &LawyerHandler{lawyers: lawyers, earnings: earnings, recorder: recorder}
}

// RegisterLawyer creates a lawyer record on the settlement platform.
func (h *LawyerHandler) RegisterLawyer(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input struct {
		UserID            uint   `json:"user_id"`
		Name              string `json:"name"`
		Tier              string `json:"tier"`
		PayoutMethod      string `json:"payout_method"`
		PayoutDestination string `json:"payout_destination"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.UserID == 0 || input.Name == "" {
		return utils.BadRequest(c, "user_id and name are required")
	}
	if input.Tier == "" {
		input.Tier = models.LawyerTierStandard
	}

	lawyer := &models.Lawyer{
		UserID:            input.UserID,
		Name:              input.Name,
		Tier:              input.Tier,
		PayoutMethod:      input.PayoutMethod,
		PayoutDestination: input.PayoutDestination,
	}
	if err := h.lawyers.Create(c.Context(), lawyer); err != nil {
		return respondError(c, err)
	}

	h.recorder.Record(c.Context(), audit.Entry{
		Action:     "lawyer.register",
		EntityType: "lawyer",
		EntityID:   strconv.FormatUint(uint64(lawyer.ID), 10),
		NewValue:   models.Snapshot(lawyer),
		ActorID:    claims.UserID,
		ActorIP:    c.IP(),
	})
	return utils.Created(c, lawyer)
}

// GetLawyer returns one lawyer by ID.
func (h *LawyerHandler) GetLawyer(c *fiber.Ctx) error {
	lawyerID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "Invalid lawyer ID")
	}

	lawyer, err := h.lawyers.FindByID(c.Context(), uint(lawyerID))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, lawyer)
}

// ListLawyers lists lawyers.
func (h *LawyerHandler) ListLawyers(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	lawyers, err := h.lawyers.List(c.Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"lawyers": lawyers})
}

// RecordEarning accrues one consultation fee for a lawyer. The unique
// consultation ID makes accrual idempotent; a duplicate is rejected by
// the database.
func (h *LawyerHandler) RecordEarning(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	lawyerID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "Invalid lawyer ID")
	}

	var input struct {
		ConsultationID   string  `json:"consultation_id"`
		ConsultationType string  `json:"consultation_type"`
		SubscriptionTier string  `json:"subscription_tier"`
		GrossAmount      float64 `json:"gross_amount"`
		Currency         string  `json:"currency"`
		EarnedAt         string  `json:"earned_at"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.ConsultationID == "" || input.ConsultationType == "" {
		return utils.BadRequest(c, "consultation_id and consultation_type are required")
	}
	if input.GrossAmount <= 0 {
		return utils.BadRequest(c, "gross_amount must be positive")
	}

	if _, err := h.lawyers.FindByID(c.Context(), uint(lawyerID)); err != nil {
		return respondError(c, err)
	}

	earnedAt := time.Now()
	if input.EarnedAt != "" {
		parsed, err := time.Parse(time.RFC3339, input.EarnedAt)
		if err != nil {
			return utils.BadRequest(c, "earned_at must be RFC3339")
		}
		earnedAt = parsed
	}

	earning := &models.Earning{
		LawyerID:         uint(lawyerID),
		ConsultationID:   input.ConsultationID,
		ConsultationType: input.ConsultationType,
		SubscriptionTier: input.SubscriptionTier,
		GrossAmount:      input.GrossAmount,
		Currency:         input.Currency,
		Status:           models.EarningStatusUnsettled,
		EarnedAt:         earnedAt,
	}
	if earning.Currency == "" {
		earning.Currency = "USD"
	}
	if err := h.earnings.Create(c.Context(), earning); err != nil {
		return respondError(c, err)
	}

	h.recorder.Record(c.Context(), audit.Entry{
		Action:     "earning.record",
		EntityType: "earning",
		EntityID:   earning.ConsultationID,
		NewValue:   models.Snapshot(earning),
		ActorID:    claims.UserID,
		ActorIP:    c.IP(),
	})
	return utils.Created(c, earning)
}

// GetUnsettledEarnings lists a lawyer's accrued, not-yet-paid earnings.
func (h *LawyerHandler) GetUnsettledEarnings(c *fiber.Ctx) error {
	lawyerID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "Invalid lawyer ID")
	}

	earnings, err := h.earnings.UnsettledByLawyer(c.Context(), uint(lawyerID))
	if err != nil {
		return respondError(c, err)
	}

	var total float64
	for _, e := range earnings {
		total += e.GrossAmount
	}
	return utils.Success(c, fiber.Map{
		"earnings":    earnings,
		"gross_total": total,
	})
}
