package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// HandleAttachAnalysis handles POST /api/reports/:id/analysis, the callback
// the external classifier uses to record its verdict. Guarded by the API key
// middleware, not by user tokens.
func HandleAttachAnalysis(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid report id"})
	}

	var req struct {
		Result      string          `json:"result"`
		Confidence  decimal.Decimal `json:"confidence"`
		RawResponse json.RawMessage `json:"raw_response"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	analysis, err := reportService.AttachAnalysis(uint(id), req.Result, req.Confidence, req.RawResponse)
	if err != nil {
		fiberlog.Errorf("[Analysis] Failed to attach result to report %d: %v", id, err)
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(analysis)
}
