package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/TobiasKrause/DamageDesk/internal/pkg/reports"
)

// respondServiceError maps service-layer sentinels onto HTTP status codes.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, reports.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	case errors.Is(err, reports.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Report not found"})
	case errors.Is(err, reports.ErrInvalidStatus):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Something went wrong"})
	}
}
