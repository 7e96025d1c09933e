package app

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/taskboard-api/internal/config"
	"github.com/noah-isme/taskboard-api/internal/database"
	"github.com/noah-isme/taskboard-api/internal/handler"
	"github.com/noah-isme/taskboard-api/internal/middleware"
	"github.com/noah-isme/taskboard-api/internal/models"
	"github.com/noah-isme/taskboard-api/internal/repository"
	"github.com/noah-isme/taskboard-api/internal/router"
	"github.com/noah-isme/taskboard-api/internal/service"
	"github.com/noah-isme/taskboard-api/internal/utils"
	"github.com/noah-isme/taskboard-api/pkg/storage"
)

// Infrastructure carries the connections opened by main. Redis and NATS are optional.
type Infrastructure struct {
	DB     *gorm.DB
	Redis  *redis.Client
	NATS   *nats.Conn
	Logger zerolog.Logger
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Task{}, &models.ActivityLog{})
}

// New assembles the Fiber application with every route and middleware.
func New(cfg config.Config, infra Infrastructure) (*fiber.App, error) {
	logger := infra.Logger
	validate := validator.New(validator.WithRequiredStructEnabled())

	uploads, err := storage.NewLocal(cfg.UploadDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	userRepo := repository.NewUserRepository(infra.DB)
	taskRepo := repository.NewTaskRepository(infra.DB)
	activityRepo := repository.NewActivityLogRepository(infra.DB)

	activityService := service.NewActivityService(activityRepo, userRepo, service.NewNATSActivityPublisher(infra.NATS, cfg.NATSSubject), logger)
	dashboardService := service.NewDashboardService(taskRepo, infra.Redis, cfg.DashboardCacheTTL, logger)
	taskService := service.NewTaskService(taskRepo, userRepo, activityService, dashboardService, validate, logger)
	attachmentService := service.NewAttachmentService(uploads, taskRepo, activityService, dashboardService, cfg.UploadMaxSizeMB, logger)

	var (
		sessions *middleware.Sessions
		tokens   *middleware.JWTManager
		issuer   service.TokenIssuer
	)
	switch cfg.AuthStrategy {
	case config.AuthStrategyJWT:
		tokens = middleware.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
		issuer = tokens
	case config.AuthStrategySession:
		sessionConfig := middleware.SessionConfig{
			CookieName: cfg.SessionCookie,
			TTL:        cfg.SessionTTL,
			Secure:     cfg.IsProduction(),
		}
		if infra.Redis != nil {
			sessionConfig.Storage = database.NewRedisStorage(infra.Redis, "session:")
		}
		sessions = middleware.NewSessions(sessionConfig)
	}

	authService := service.NewAuthService(userRepo, service.NewBcryptHasher(cfg.BcryptCost), issuer, activityService, validate, logger)

	var limiterStorage fiber.Storage
	if infra.Redis != nil {
		limiterStorage = database.NewRedisStorage(infra.Redis, "ratelimit:")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
		ErrorHandler: errorHandler(logger),
	})

	middleware.Register(app, middleware.Config{
		Logger:      &logger,
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   !cfg.IsProduction(),
	})

	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authService, sessions, logger),
		TaskHandler:      handler.NewTaskHandler(taskService, logger),
		UploadHandler:    handler.NewUploadHandler(attachmentService, logger),
		ActivityHandler:  handler.NewActivityHandler(activityService, logger),
		DashboardHandler: handler.NewDashboardHandler(dashboardService, logger),
		Identity: middleware.Identity(middleware.IdentityConfig{
			Strategy: cfg.AuthStrategy,
			Sessions: sessions,
			Tokens:   tokens,
			Resolver: authService,
			Logger:   logger,
		}),
		AuthLimiter: middleware.RateLimit("auth", cfg.AuthRateLimit, time.Minute, limiterStorage),
	})

	return app, nil
}

// errorHandler renders framework errors (unknown routes, oversized bodies)
// in the API envelope.
func errorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"
		if fiberErr, ok := err.(*fiber.Error); ok {
			status = fiberErr.Code
			message = fiberErr.Message
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error().Err(err).Str("correlation_id", middleware.GetCorrelationID(c)).Msg("unhandled error")
		}
		return utils.SendError(c, status, message)
	}
}
