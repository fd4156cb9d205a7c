package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const localLogger = "logger"

// RequestLogger registra cada petición y deja en Locals un sublogger con el request id.
// Usar después de requestid.New().
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqLog := log.With().
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Logger()
		c.Locals(localLogger, reqLog)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := reqLog.Info()
		if status >= fiber.StatusInternalServerError {
			ev = reqLog.Warn()
		}
		ev.Int("status", status).Dur("latency", time.Since(start)).Msg("request")
		return err
	}
}

func requestLogger(c *fiber.Ctx) *zerolog.Logger {
	if l, ok := c.Locals(localLogger).(zerolog.Logger); ok {
		return &l
	}
	l := zerolog.Nop()
	return &l
}
