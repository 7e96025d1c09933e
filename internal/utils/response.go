package utils

import (
	"reflect"

	"github.com/gofiber/fiber/v2"
)

// APIResponse describes the common envelope for message responses.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendSuccess sends a 200 envelope; fields are merged next to success and message.
func SendSuccess(c *fiber.Ctx, message string, fields fiber.Map) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, fields)
}

// SendSuccessWithStatus sends a success envelope using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, fields fiber.Map) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	if len(fields) == 0 {
		return c.Status(status).JSON(APIResponse{Success: true, Message: message})
	}

	body := make(fiber.Map, len(fields)+2)
	for key, value := range fields {
		body[key] = value
	}
	body["success"] = true
	body["message"] = message

	return c.Status(status).JSON(body)
}

// SendList writes items as a bare JSON array; a nil slice is sent as [].
func SendList(c *fiber.Ctx, items interface{}) error {
	value := reflect.ValueOf(items)
	if items == nil || (value.Kind() == reflect.Slice && value.IsNil()) {
		return c.Status(fiber.StatusOK).JSON([]interface{}{})
	}
	return c.Status(fiber.StatusOK).JSON(items)
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
	})
}
