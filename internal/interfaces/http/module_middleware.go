package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/albaranes-api/pkg/logger"
)

// RequestLogger registra cada petición con su request id, estado y duración.
// Debe ir después de requestid. Si un handler falla, invoca el ErrorHandler
// de la app antes de registrar, para que el estado registrado sea el final.
func RequestLogger(log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		reqID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		status := c.Response().StatusCode()

		ev := log.Debug()
		if status >= fiber.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("request_id", reqID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Str("user_id", GetUserID(c)).
			Dur("latency", time.Since(start)).
			Msg("petición atendida")
		return nil
	}
}
