package utils

import (
	"github.com/gofiber/fiber/v2"
)

const APIVersion = "1.0"

// Machine-readable error codes carried in the failure envelope.
const (
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeForbidden   = "FORBIDDEN"
	ErrCodeConflict    = "CONFLICT"
	ErrCodeRateLimited = "RATE_LIMITED"
	ErrCodeServer      = "SERVER_ERROR"
)

// Success writes the standard success envelope.
func Success(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"statusCode": status,
		"api_ver":    APIVersion,
		"success":    true,
		"message":    message,
		"data":       data,
	})
}

// Fail writes the standard failure envelope.
func Fail(c *fiber.Ctx, status int, code string, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"statusCode": status,
		"api_ver":    APIVersion,
		"success":    false,
		"error": fiber.Map{
			"error_code": code,
			"message":    message,
		},
	})
}
