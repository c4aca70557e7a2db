package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/buildcare/defect-backend/internal/services"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) DefectsPerBuilding(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	rows, err := h.analyticsService.DefectsPerBuilding(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}

func (h *AnalyticsHandler) DefectsByStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	rows, err := h.analyticsService.DefectsByStatus(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}
