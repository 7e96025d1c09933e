package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/taskboard-api/internal/models"
	"github.com/noah-isme/taskboard-api/internal/utils"
)

// Auth role constants used by WithAuth helper.
const (
	AuthRoleAny     = "any"
	AuthRoleAdmin   = models.RoleAdmin
	AuthRoleTeacher = models.RoleTeacher
	AuthRoleStudent = models.RoleStudent
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role string
	// AllowAnonymous lets AuthRoleAny routes run without an identity.
	AllowAnonymous bool
}

// WithAuth wraps a handler with authentication and role guards.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}
	anonymous := opts.AllowAnonymous && role == AuthRoleAny

	return func(c *fiber.Ctx) error {
		actor := ActorFromContext(c)
		if actor.ID == 0 {
			if anonymous {
				return handler(c)
			}
			return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		if role != AuthRoleAny && normalizeRole(actor.Role) != role {
			return utils.SendError(c, fiber.StatusForbidden, "Unauthorized")
		}

		return handler(c)
	}
}
