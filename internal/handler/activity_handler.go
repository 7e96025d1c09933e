package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/taskboard-api/internal/dto"
	"github.com/noah-isme/taskboard-api/internal/middleware"
	"github.com/noah-isme/taskboard-api/internal/service"
	"github.com/noah-isme/taskboard-api/internal/utils"
)

// ActivityHandler exposes the audit log to admins.
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

// Register wires audit log routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/logs", middleware.RequireRole(middleware.AuthRoleAdmin), h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil || page < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "page must be a positive integer")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil || pageSize < 0 || pageSize > 500 {
		return utils.SendError(c, fiber.StatusBadRequest, "page_size must be between 1 and 500")
	}

	req := dto.ActivityListRequest{Page: page, PageSize: pageSize}
	// actor_id, not user_id: the params identity strategy reads user_id as
	// the caller.
	userID, err := parseQueryInt(c, "actor_id")
	if err != nil || userID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "actor_id must be a positive integer")
	}
	if userID > 0 {
		id := uint(userID)
		req.UserID = &id
	}

	entries, err := h.service.List(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "list_logs")
	}

	return utils.SendList(c, entries)
}
