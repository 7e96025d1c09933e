package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Identity strategies supported by the API.
const (
	AuthStrategySession = "session"
	AuthStrategyJWT     = "jwt"
	AuthStrategyParams  = "params"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	NATSSubject       string
	AuthStrategy      string
	JWTSecret         string
	JWTTTL            time.Duration
	SessionTTL        time.Duration
	SessionCookie     string
	UploadDir         string
	UploadMaxSizeMB   int
	CORSOrigins       []string
	DashboardCacheTTL time.Duration
	BcryptCost        int
	AuthRateLimit     int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs in the production environment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TASKBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Taskboard API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.url", "sqlite://taskboard.db")
	v.SetDefault("nats.subject", "taskboard.activity")
	v.SetDefault("auth.strategy", AuthStrategySession)
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookie", "taskboard_session")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("cors.origins", "http://localhost:3000,http://127.0.0.1:3000")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("bcrypt.cost", bcrypt.DefaultCost)
	v.SetDefault("rate_limit.auth_max", 20)

	jwtTTL, err := parseDuration(v.GetString("jwt.ttl"), 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	sessionTTL, err := parseDuration(v.GetString("session.ttl"), 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cacheTTL, err := parseDuration(v.GetString("dashboard.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		NATSSubject:       v.GetString("nats.subject"),
		AuthStrategy:      strings.ToLower(strings.TrimSpace(v.GetString("auth.strategy"))),
		JWTSecret:         v.GetString("jwt.secret"),
		JWTTTL:            jwtTTL,
		SessionTTL:        sessionTTL,
		SessionCookie:     v.GetString("session.cookie"),
		UploadDir:         v.GetString("upload.dir"),
		UploadMaxSizeMB:   v.GetInt("upload.max_size_mb"),
		CORSOrigins:       splitList(v.GetString("cors.origins")),
		DashboardCacheTTL: cacheTTL,
		BcryptCost:        v.GetInt("bcrypt.cost"),
		AuthRateLimit:     v.GetInt("rate_limit.auth_max"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AuthStrategy {
	case AuthStrategySession:
	case AuthStrategyJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("jwt secret must be provided for the jwt auth strategy")
		}
	case AuthStrategyParams:
		if c.IsProduction() {
			return fmt.Errorf("params auth strategy is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown auth strategy %q", c.AuthStrategy)
	}

	if c.UploadMaxSizeMB <= 0 {
		c.UploadMaxSizeMB = 10
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		c.BcryptCost = bcrypt.DefaultCost
	}

	if c.AuthRateLimit <= 0 {
		c.AuthRateLimit = 20
	}

	if strings.TrimSpace(c.SessionCookie) == "" {
		c.SessionCookie = "taskboard_session"
	}

	return nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
