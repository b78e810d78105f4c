package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/profileiq-api/internal/dto"
	"github.com/noah-isme/profileiq-api/internal/service"
	"github.com/noah-isme/profileiq-api/internal/utils"
)

// ActivityHandler exposes the student's activity CRUD.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register mounts the routes on the /activities group, which must be restricted to students.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	activities, err := h.service.List(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.OK(c, fiber.Map{"activities": activities}, "activities retrieved", fiber.Map{"count": len(activities)})
}

func (h *ActivityHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}

	activity, err := h.service.Get(c.UserContext(), userIDFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "activity retrieved", fiber.Map{"activity": activity})
}

func (h *ActivityHandler) create(c *fiber.Ctx) error {
	var req dto.ActivityCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	activity, err := h.service.Create(c.UserContext(), userIDFromContext(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity created", fiber.Map{"activity": activity})
}

func (h *ActivityHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}

	var req dto.ActivityUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	activity, err := h.service.Update(c.UserContext(), userIDFromContext(c), id, req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "activity updated", fiber.Map{"activity": activity})
}

func (h *ActivityHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}

	if err := h.service.Delete(c.UserContext(), userIDFromContext(c), id); err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "activity deleted", nil)
}
