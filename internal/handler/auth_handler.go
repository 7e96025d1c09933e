package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/taskboard-api/internal/dto"
	"github.com/noah-isme/taskboard-api/internal/middleware"
	"github.com/noah-isme/taskboard-api/internal/service"
	"github.com/noah-isme/taskboard-api/internal/utils"
)

// AuthHandler exposes registration, login and logout.
type AuthHandler struct {
	service  service.AuthService
	sessions *middleware.Sessions
	logger   zerolog.Logger
}

// NewAuthHandler constructs the handler. sessions is nil for token based identity.
func NewAuthHandler(service service.AuthService, sessions *middleware.Sessions, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		logger:   logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes; limiter guards the credential endpoints.
func (h *AuthHandler) Register(router fiber.Router, limiter fiber.Handler) {
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	router.Post("/register", limiter, h.register)
	router.Post("/login", limiter, h.login)
	router.Post("/logout", middleware.WithAuth(h.logout, middleware.AuthOptions{AllowAnonymous: true}))
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if _, err := h.service.Register(c.UserContext(), payload); err != nil {
		if errors.Is(err, service.ErrEmailInUse) {
			return utils.SendError(c, fiber.StatusBadRequest, "Email already in use")
		}
		return respondError(c, h.logger, err, "register")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "User registered successfully", nil)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return utils.SendError(c, fiber.StatusUnauthorized, "Invalid credentials")
		}
		return respondError(c, h.logger, err, "login")
	}

	if h.sessions != nil {
		if err := h.sessions.Bind(c, result.User.ID); err != nil {
			return respondError(c, h.logger, err, "login")
		}
	}

	fields := fiber.Map{"user": result.User}
	if result.Token != "" {
		fields["token"] = result.Token
	}
	return utils.SendSuccess(c, "Login successful", fields)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	h.service.Logout(c.UserContext(), actorFromContext(c))

	if h.sessions != nil {
		if err := h.sessions.Destroy(c); err != nil {
			requestLogger(h.logger, c).Warn().Err(err).Msg("failed to destroy session")
		}
	}

	return utils.SendSuccess(c, "Logout successful", nil)
}
