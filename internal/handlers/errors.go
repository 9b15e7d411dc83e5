package handlers

import (
	"lexpay/internal/errors"
	"lexpay/internal/repositories"
	"lexpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// respondError maps service errors onto HTTP status codes so every
// handler reports failures the same way.
func respondError(c *fiber.Ctx, err error) error {
	var railErr *errors.RailError

	switch {
	case errors.IsValidation(err):
		return utils.BadRequest(c, err.Error())
	case errors.IsConflict(err):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, errors.ErrLawyerNotFound),
		errors.Is(err, errors.ErrPayoutNotFound),
		errors.Is(err, errors.ErrRefundNotFound),
		errors.Is(err, errors.ErrConfigNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, errors.ErrNothingToSettle):
		return utils.Respond(c, fiber.StatusUnprocessableEntity, fiber.Map{"error": err.Error()})
	case errors.Is(err, errors.ErrPayoutInFlight),
		errors.Is(err, repositories.ErrLockNotAcquired):
		return utils.Conflict(c, "another settlement is in progress for this lawyer")
	case errors.As(err, &railErr):
		return utils.Respond(c, fiber.StatusBadGateway, fiber.Map{"error": err.Error()})
	default:
		return utils.InternalError(c, err.Error())
	}
}
