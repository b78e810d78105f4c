package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/profileiq-api/internal/middleware"
	"github.com/noah-isme/profileiq-api/internal/service"
	"github.com/noah-isme/profileiq-api/internal/utils"
	"github.com/noah-isme/profileiq-api/pkg/ai"
)

var errInvalidID = errors.New("invalid id")

func userIDFromContext(c *fiber.Ctx) uint {
	switch v := c.Locals(middleware.LocalUserID).(type) {
	case uint:
		return v
	case int:
		if v > 0 {
			return uint(v)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if role, ok := c.Locals(middleware.LocalUserRole).(string); ok {
		return strings.ToLower(strings.TrimSpace(role))
	}
	return ""
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	return service.Actor{ID: userIDFromContext(c), Role: userRoleFromContext(c)}
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(key)), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errInvalidID
	}
	return uint(parsed), nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if correlation := middleware.GetCorrelationID(c); correlation != "" {
		logger = base.With().Str("correlation_id", correlation).Logger()
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}

// handleError maps service errors onto the response envelope.
func handleError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrProfileRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "Complete your profile before evaluation")
	case errors.Is(err, service.ErrActivitiesRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "Add at least one activity before evaluation")
	case errors.Is(err, service.ErrEvaluationNotFound),
		errors.Is(err, service.ErrActivityNotFound),
		errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, capitalize(err))
	case errors.Is(err, service.ErrEvaluationForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "Access denied")
	case errors.Is(err, service.ErrStudentNotAssigned):
		return utils.SendError(c, fiber.StatusForbidden, "Not assigned to this student")
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrActivityDateRange),
		errors.Is(err, service.ErrActivityContentEmpty),
		errors.Is(err, errInvalidID):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrOracleUnavailable),
		errors.Is(err, ai.ErrMalformedResponse),
		errors.Is(err, ai.ErrInvalidOracleResponse):
		requestLogger(logger, c).Error().Err(err).Msg("evaluation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func capitalize(err error) string {
	message := err.Error()
	if message == "" {
		return message
	}
	return strings.ToUpper(message[:1]) + message[1:]
}
