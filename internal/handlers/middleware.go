package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type RequestObserver interface {
	ObserveHTTPRequest(method, route string, status int, d time.Duration)
}

// RequestMetrics records method, matched route, status and latency of every request.
func RequestMetrics(observer RequestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		observer.ObserveHTTPRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
