package handlers

import (
	"strconv"

	"lexpay/internal/repositories"
	"lexpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	repo repositories.AuditRepository
}

func NewAuditHandler(repo repositories.AuditRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// ListAuditLog returns audit entries, newest first, optionally filtered
// by entity type, entity ID or actor.
func (h *AuditHandler) ListAuditLog(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	actorID, _ := strconv.ParseUint(c.Query("actor_id", "0"), 10, 32)

	entries, err := h.repo.List(c.Context(), repositories.AuditFilter{
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		ActorID:    uint(actorID),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"entries": entries})
}
