package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type ctxKey int

const (
	requestIDCtxKey ctxKey = iota
	loggerCtxKey
)

// RequestScopedLogger injects a per-request *slog.Logger into the user
// context, carrying the request id and the route so the search services can
// log without threading handler state through every call.
func RequestScopedLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			return c.Next()
		}

		reqLogger := slog.Default().With(
			"request_id", rid,
			"path", c.Path(),
		)

		ctx := context.WithValue(c.Context(), requestIDCtxKey, rid)
		ctx = context.WithValue(ctx, loggerCtxKey, reqLogger)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// LoggerFromCtx extracts the per-request slog.Logger from a context.
// Falls back to the default logger if none is set.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerCtxKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
