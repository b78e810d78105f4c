package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/profileiq-api/internal/middleware"
	"github.com/noah-isme/profileiq-api/internal/service"
	"github.com/noah-isme/profileiq-api/internal/utils"
)

// EvaluationHandler exposes evaluation trigger and read endpoints.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register mounts the routes. triggerGuards run before the trigger only, typically the rate limiter.
func (h *EvaluationHandler) Register(router fiber.Router, triggerGuards ...fiber.Handler) {
	student := middleware.AuthOptions{Role: middleware.AuthRoleStudent}
	signedIn := middleware.AuthOptions{RequireUser: true}

	trigger := append([]fiber.Handler{}, triggerGuards...)
	trigger = append(trigger, middleware.WithAuth(h.trigger, student))

	router.Post("/evaluations", trigger...)
	router.Get("/evaluations", middleware.WithAuth(h.list, student))
	router.Get("/evaluations/latest", middleware.WithAuth(h.latest, student))
	router.Get("/evaluations/:id", middleware.WithAuth(h.get, signedIn))
	router.Get("/evaluations/:id/export", middleware.WithAuth(h.export, signedIn))
}

func (h *EvaluationHandler) trigger(c *fiber.Ctx) error {
	evaluation, err := h.service.Trigger(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "evaluation created", fiber.Map{"evaluation": evaluation})
}

func (h *EvaluationHandler) list(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.OK(c, list, "evaluations retrieved", fiber.Map{"count": len(list.Evaluations)})
}

func (h *EvaluationHandler) latest(c *fiber.Ctx) error {
	evaluation, err := h.service.Latest(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "latest evaluation retrieved", fiber.Map{"evaluation": evaluation})
}

func (h *EvaluationHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}

	evaluation, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "evaluation retrieved", fiber.Map{"evaluation": evaluation})
}

func (h *EvaluationHandler) export(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}

	export, err := h.service.Export(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "evaluation export generated", fiber.Map{"export": export})
}
