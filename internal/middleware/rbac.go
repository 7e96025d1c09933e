package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/taskboard-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		actor := ActorFromContext(c)
		if actor.ID == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		if _, ok := allowed[normalizeRole(actor.Role)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "Unauthorized")
		}
		return c.Next()
	}
}
