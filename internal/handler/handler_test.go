package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/taskboard-api/internal/middleware"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// newTestApp mounts routes behind a stub identity taken from the
// X-Test-User and X-Test-Role headers.
func newTestApp(register func(router fiber.Router)) *fiber.App {
	app := fiber.New()
	group := app.Group("/", func(c *fiber.Ctx) error {
		if id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64); err == nil {
			c.Locals(middleware.LocalUserID, uint(id))
			c.Locals(middleware.LocalUserRole, c.Get("X-Test-Role"))
		}
		return c.Next()
	})
	register(group)
	return app
}

func as(req *http.Request, id, role string) *http.Request {
	req.Header.Set("X-Test-User", id)
	req.Header.Set("X-Test-Role", role)
	return req
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func decodeMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	return body.Message
}
