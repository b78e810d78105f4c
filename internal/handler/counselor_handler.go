package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/profileiq-api/internal/service"
	"github.com/noah-isme/profileiq-api/internal/utils"
)

// CounselorHandler serves the counselor dashboard views.
type CounselorHandler struct {
	service service.CounselorService
	logger  zerolog.Logger
}

// NewCounselorHandler constructs the handler.
func NewCounselorHandler(service service.CounselorService, logger zerolog.Logger) *CounselorHandler {
	return &CounselorHandler{
		service: service,
		logger:  logger.With().Str("component", "counselor_handler").Logger(),
	}
}

// Register mounts the routes on the /counselors group, which must be restricted to counselors.
func (h *CounselorHandler) Register(router fiber.Router) {
	router.Get("/students", h.listStudents)
	router.Get("/students/:id", h.studentDetail)
}

func (h *CounselorHandler) listStudents(c *fiber.Ctx) error {
	students, err := h.service.ListStudents(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "students retrieved", fiber.Map{"students": students})
}

func (h *CounselorHandler) studentDetail(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}

	detail, err := h.service.StudentDetail(c.UserContext(), userIDFromContext(c), studentID)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student retrieved", detail)
}
