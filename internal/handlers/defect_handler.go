package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/buildcare/defect-backend/internal/dto"
	"github.com/buildcare/defect-backend/internal/middleware"
	"github.com/buildcare/defect-backend/internal/services"
)

type DefectHandler struct {
	defectService *services.DefectService
}

func NewDefectHandler(defectService *services.DefectService) *DefectHandler {
	return &DefectHandler{defectService: defectService}
}

func (h *DefectHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req dto.CreateDefectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	defect, err := h.defectService.Create(actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(defect)
}

func (h *DefectHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	defects, err := h.defectService.List(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(defects)
}

func (h *DefectHandler) Get(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	defect, err := h.defectService.Get(actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(defect)
}

func (h *DefectHandler) Update(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateDefectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	defect, err := h.defectService.Update(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(defect)
}

func (h *DefectHandler) Review(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.ReviewDefectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	defect, err := h.defectService.Review(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(defect)
}

func (h *DefectHandler) Assign(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.AssignDefectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	defect, err := h.defectService.Assign(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(defect)
}

func (h *DefectHandler) MarkOngoing(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.OngoingDefectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	defect, err := h.defectService.MarkOngoing(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(defect)
}

func (h *DefectHandler) MarkDone(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.DoneDefectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	defect, err := h.defectService.MarkDone(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(defect)
}

func (h *DefectHandler) Complete(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.CompleteDefectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	defect, err := h.defectService.Complete(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(defect)
}

func (h *DefectHandler) Reopen(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	defect, err := h.defectService.Reopen(actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(defect)
}

func (h *DefectHandler) Delete(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.defectService.Delete(actor, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "defect deleted"})
}

func (h *DefectHandler) UpsertComments(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.UpsertCommentsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	comment, err := h.defectService.UpsertComments(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

func (h *DefectHandler) ListComments(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	comments, err := h.defectService.ListComments(actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// actorFrom pulls the identity resolved by the middleware chain. The
// returned fiber.Error is rendered by the app error handler as
// {"message": ...}.
func actorFrom(c *fiber.Ctx) (services.Actor, error) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return services.Actor{}, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return principal.Actor(), nil
}

func actorAndID(c *fiber.Ctx) (services.Actor, uuid.UUID, error) {
	actor, err := actorFrom(c)
	if err != nil {
		return actor, uuid.Nil, err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return actor, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return actor, id, nil
}
