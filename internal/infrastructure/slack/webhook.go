// Package slack publica errores internos en un webhook entrante de Slack.
package slack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/albaranes-api/internal/application/ports"
)

var _ ports.ErrorSink = (*WebhookSink)(nil)

// WebhookSink envía {"text": ...} al webhook configurado.
type WebhookSink struct {
	url     string
	timeout time.Duration
}

// New sin webhook devuelve un sink que descarta.
func New(webhook string) ports.ErrorSink {
	if webhook == "" {
		return ports.NopErrorSink{}
	}
	return &WebhookSink{url: webhook, timeout: 5 * time.Second}
}

func (s *WebhookSink) Write(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	status, _, errs := fiber.Post(s.url).
		Timeout(s.timeout).
		JSON(fiber.Map{"text": message}).
		Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("slack: %w", errors.Join(errs...))
	}
	if status >= fiber.StatusBadRequest {
		return fmt.Errorf("slack: estado %d", status)
	}
	return nil
}
