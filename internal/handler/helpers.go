package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/taskboard-api/internal/middleware"
	"github.com/noah-isme/taskboard-api/internal/service"
	"github.com/noah-isme/taskboard-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseID(c *fiber.Ctx, key string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Params(key)), 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(value), nil
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	return middleware.ActorFromContext(c)
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// validationMessage names the first failing field.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "Invalid request"
	}
	field := validationErrors[0]
	switch field.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", strings.ToLower(field.Field()))
	case "email":
		return "Invalid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", strings.ToLower(field.Field()), field.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", strings.ToLower(field.Field()), field.Param())
	default:
		return fmt.Sprintf("%s is invalid", strings.ToLower(field.Field()))
	}
}

// respondError covers the errors every handler shares; handlers map their
// own sentinels first.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, operation string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	case errors.Is(err, service.ErrUnauthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "Unauthorized")
	default:
		requestLogger(logger, c).Error().Err(err).Str("operation", operation).Msg("request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
