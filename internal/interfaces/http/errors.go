package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/pkg/logger"
)

// statusFor traduce un error de dominio a (estado HTTP, código).
func statusFor(err error) (int, string) {
	var fe *fiber.Error
	var verr *domain.VerificationError
	switch {
	case errors.As(err, &fe):
		return fe.Code, "HTTP_ERROR"
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, "INVALID_CODE"
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusUnprocessableEntity, "VALIDATION"
	case errors.Is(err, domain.ErrInvalidID):
		return fiber.StatusBadRequest, "INVALID_ID"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidCode):
		return fiber.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrMaxAttempts):
		return fiber.StatusForbidden, "MAX_ATTEMPTS"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, "EMAIL_EXISTS"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "CONFLICT"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// ErrorHandler responde dto.ErrorResponse para cualquier error devuelto por un
// handler. Los 5xx se registran y se envían al sink sin exponer el detalle.
func ErrorHandler(log *logger.Logger, sink ports.ErrorSink) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	if sink == nil {
		sink = ports.NopErrorSink{}
	}
	return func(c *fiber.Ctx, err error) error {
		status, code := statusFor(err)
		body := dto.ErrorResponse{Code: code, Message: err.Error()}

		var fields *domain.FieldsError
		if errors.As(err, &fields) {
			for _, f := range fields.Fields {
				body.Details = append(body.Details, dto.FieldError{Field: f.Field, Message: f.Message})
			}
		}

		if status >= fiber.StatusInternalServerError {
			reqID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
			log.Error().Err(err).
				Str("request_id", reqID).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("error interno")
			report := fmt.Sprintf("[%s] %s %s: %v", reqID, c.Method(), c.Path(), err)
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if serr := sink.Write(ctx, report); serr != nil {
					log.Warn().Err(serr).Msg("no se pudo notificar el error")
				}
			}()
			body.Message = "error interno del servidor"
		}
		return c.Status(status).JSON(body)
	}
}
