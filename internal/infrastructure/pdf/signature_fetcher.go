package pdf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/albaranes-api/internal/application/ports"
)

var _ ports.ImageFetcher = (*SignatureFetcher)(nil)

// SignatureFetcher descarga imágenes de firma con el cliente HTTP de fiber.
type SignatureFetcher struct {
	timeout time.Duration
}

// NewSignatureFetcher timeout <= 0 usa 10s.
func NewSignatureFetcher(timeout time.Duration) *SignatureFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SignatureFetcher{timeout: timeout}
}

// Fetch GET url; cualquier estado distinto de 200 es error.
func (f *SignatureFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("firma sin URL")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent := fiber.Get(url).Timeout(timeout)
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("descargar firma: %w", errors.Join(errs...))
	}
	if status != fiber.StatusOK {
		return nil, fmt.Errorf("descargar firma: estado %d", status)
	}
	return body, nil
}
