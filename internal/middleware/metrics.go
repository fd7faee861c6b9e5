package middleware

import (
	"time"

	"sembako/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and latency per route template. Errors are
// rendered here so the recorded status is the one the client sees.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		m.ObserveRequest(c.Method(), c.Route().Path, c.Response().StatusCode(), time.Since(start))
		return nil
	}
}
