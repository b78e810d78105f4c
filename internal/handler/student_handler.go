package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/profileiq-api/internal/dto"
	"github.com/noah-isme/profileiq-api/internal/service"
	"github.com/noah-isme/profileiq-api/internal/utils"
)

// StudentHandler serves the caller's own profile and dashboard summary.
type StudentHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.ProfileService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register mounts the routes on the /students/me group, which must be restricted to students.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/", h.getProfile)
	router.Put("/", h.updateProfile)
	router.Get("/summary", h.summary)
}

func (h *StudentHandler) getProfile(c *fiber.Ctx) error {
	profile, err := h.service.Get(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "profile retrieved", fiber.Map{"profile": profile})
}

func (h *StudentHandler) updateProfile(c *fiber.Ctx) error {
	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	profile, err := h.service.Update(c.UserContext(), userIDFromContext(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "profile updated", fiber.Map{"profile": profile})
}

func (h *StudentHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "summary retrieved", summary)
}
