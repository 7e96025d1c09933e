package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/taskboard-api/internal/middleware"
	"github.com/noah-isme/taskboard-api/internal/service"
)

// DashboardHandler serves per-user task summaries.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", middleware.RequireRole(middleware.AuthRoleTeacher, middleware.AuthRoleStudent), h.get)
}

func (h *DashboardHandler) get(c *fiber.Ctx) error {
	summary, err := h.service.Get(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "dashboard")
	}
	return c.JSON(summary)
}
