package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/buildcare/defect-backend/internal/dto"
	"github.com/buildcare/defect-backend/internal/services"
)

type BuildingHandler struct {
	buildingService *services.BuildingService
}

func NewBuildingHandler(buildingService *services.BuildingService) *BuildingHandler {
	return &BuildingHandler{buildingService: buildingService}
}

func (h *BuildingHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	buildings, err := h.buildingService.List(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(buildings)
}

func (h *BuildingHandler) Get(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	building, err := h.buildingService.Get(actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(building)
}

func (h *BuildingHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req dto.CreateBuildingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	building, err := h.buildingService.Create(actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(building)
}

func (h *BuildingHandler) Update(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateBuildingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	building, err := h.buildingService.Update(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(building)
}

func (h *BuildingHandler) Delete(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.buildingService.Delete(actor, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "building deleted"})
}
