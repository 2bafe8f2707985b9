package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"placementhelper/ats-agent/internal/models"
	"placementhelper/ats-agent/internal/repositories"
	"placementhelper/ats-agent/internal/services"
)

// ErrorHandler renders every error as {"error": ..., "code": ...}, mapping
// domain sentinels to their HTTP status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, models.ErrUnknownModel),
		errors.Is(err, services.ErrUnsupportedFormat):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNoInput),
		errors.Is(err, services.ErrEmptyDocument):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}
