package handlers

import (
	"context"
	"errors"
	"log"

	"sembako/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ErrorHandler turns errors returned by handlers and middleware into JSON
// responses. Internal error messages are only exposed in development.
func ErrorHandler(development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error":   utils.StatusMessage(fiberErr.Code),
				"message": fiberErr.Message,
			})
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			log.Printf("Request %s %s abandoned: %v", c.Method(), c.Path(), err)
			return c.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{
				"error":   utils.StatusMessage(fiber.StatusRequestTimeout),
				"message": "Request timed out",
			})
		}

		var appErr *apperrors.Error
		if !errors.As(err, &appErr) {
			appErr = apperrors.Internal("An unexpected error occurred", err)
		}

		status := appErr.Kind.HTTPStatus()
		if status >= fiber.StatusInternalServerError {
			log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
		}

		body := fiber.Map{"error": appErr.Kind.String()}
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		} else {
			body["message"] = publicMessage(appErr, err, development)
		}
		return c.Status(status).JSON(body)
	}
}

func publicMessage(appErr *apperrors.Error, err error, development bool) string {
	if appErr.Kind != apperrors.KindInternal {
		return appErr.Message
	}
	if development {
		return err.Error()
	}
	return "An unexpected error occurred"
}
