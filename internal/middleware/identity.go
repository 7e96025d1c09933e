package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"

	"github.com/noah-isme/taskboard-api/internal/config"
	"github.com/noah-isme/taskboard-api/internal/service"
)

// Context locals populated by Identity.
const (
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
)

// IdentityResolver reloads the user behind a session or token.
type IdentityResolver interface {
	Identify(ctx context.Context, userID uint) (service.Actor, error)
}

// IdentityConfig selects how callers are identified.
type IdentityConfig struct {
	Strategy string
	Sessions *Sessions
	Tokens   *JWTManager
	Resolver IdentityResolver
	Logger   zerolog.Logger
}

// Identity resolves the caller and stores user_id and user_role in the request
// locals. Requests without a valid identity pass through anonymously; route
// guards decide whether that is acceptable.
func Identity(cfg IdentityConfig) fiber.Handler {
	logger := cfg.Logger.With().Str("component", "identity").Logger()

	return func(c *fiber.Ctx) error {
		if cfg.Strategy == config.AuthStrategyParams {
			userID, err := strconv.ParseUint(strings.TrimSpace(c.Query("user_id")), 10, 64)
			if err == nil && userID > 0 {
				c.Locals(LocalUserID, uint(userID))
				c.Locals(LocalUserRole, utils.CopyString(normalizeRole(c.Query("role"))))
			}
			return c.Next()
		}

		var userID uint
		switch cfg.Strategy {
		case config.AuthStrategyJWT:
			if cfg.Tokens != nil {
				if token := bearerToken(c.Get(fiber.HeaderAuthorization)); token != "" {
					id, _, err := cfg.Tokens.Parse(token)
					if err != nil {
						logger.Debug().Str("correlation_id", GetCorrelationID(c)).Msg("rejected bearer token")
					}
					userID = id
				}
			}
		default:
			if cfg.Sessions != nil {
				id, err := cfg.Sessions.UserID(c)
				if err != nil {
					logger.Warn().Err(err).Str("correlation_id", GetCorrelationID(c)).Msg("failed to load session")
				}
				userID = id
			}
		}

		if userID == 0 || cfg.Resolver == nil {
			return c.Next()
		}

		actor, err := cfg.Resolver.Identify(c.UserContext(), userID)
		if err != nil {
			if !errors.Is(err, service.ErrUnauthenticated) {
				logger.Error().Err(err).Uint("user_id", userID).Str("correlation_id", GetCorrelationID(c)).Msg("failed to resolve identity")
			}
			return c.Next()
		}

		c.Locals(LocalUserID, actor.ID)
		c.Locals(LocalUserRole, actor.Role)
		return c.Next()
	}
}

// ActorFromContext returns the identity stored by Identity, or the zero Actor.
func ActorFromContext(c *fiber.Ctx) service.Actor {
	id, _ := c.Locals(LocalUserID).(uint)
	role, _ := c.Locals(LocalUserRole).(string)
	return service.Actor{ID: id, Role: role}
}
