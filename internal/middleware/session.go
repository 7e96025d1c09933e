package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

const sessionUserKey = "user_id"

// SessionConfig configures the server-side session store.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	// Storage persists session data; nil keeps sessions in process memory.
	Storage fiber.Storage
}

// Sessions binds authenticated users to an HTTP-only session cookie.
type Sessions struct {
	store *session.Store
}

// NewSessions builds the session store.
func NewSessions(cfg SessionConfig) *Sessions {
	if cfg.CookieName == "" {
		cfg.CookieName = "session_id"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}

	return &Sessions{store: session.New(session.Config{
		Expiration:     cfg.TTL,
		Storage:        cfg.Storage,
		KeyLookup:      "cookie:" + cfg.CookieName,
		CookiePath:     "/",
		CookieSecure:   cfg.Secure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		KeyGenerator:   uuid.NewString,
	})}
}

// Bind starts a fresh session for userID and writes the cookie.
func (s *Sessions) Bind(c *fiber.Ctx, userID uint) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	sess.Set(sessionUserKey, userID)
	return sess.Save()
}

// UserID returns the user bound to the request's session, or zero.
func (s *Sessions) UserID(c *fiber.Ctx) (uint, error) {
	sess, err := s.store.Get(c)
	if err != nil {
		return 0, err
	}
	if sess.Fresh() {
		return 0, nil
	}
	id, _ := sess.Get(sessionUserKey).(uint)
	return id, nil
}

// Destroy removes the session and expires the cookie. Requests without a
// session are a no-op.
func (s *Sessions) Destroy(c *fiber.Ctx) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return err
	}
	if sess.Fresh() {
		return nil
	}
	return sess.Destroy()
}
