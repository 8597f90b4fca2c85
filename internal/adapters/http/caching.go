package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if the handler already set one
		if existing := c.GetRespHeader("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		// Default cache times by endpoint pattern
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0" // GraphQL varies wildly

		case strings.HasPrefix(path, "/v1/search/clusters"):
			ttl = "public, max-age=60" // Map tiles refresh often

		case strings.HasPrefix(path, "/v1/search/nearest"):
			ttl = "public, max-age=60"

		case strings.HasPrefix(path, "/v1/search"):
			ttl = "public, max-age=120" // 2 min for search pages

		case strings.HasPrefix(path, "/v1/listings/batch"):
			ttl = "public, max-age=300"

		case strings.HasPrefix(path, "/v1/listings/"):
			ttl = "public, max-age=600" // 10 min for a single listing

		case path == "/v1/index/stats":
			ttl = "public, max-age=60" // Index stats: 1 min

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=120" // 2 min default for API endpoints
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
