package http

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/albaranes-api/internal/application/validation"
	"github.com/jhoicas/albaranes-api/internal/domain"
)

// bind parsea el cuerpo JSON y valida las etiquetas validate del DTO.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)
	}
	return validation.Struct(out)
}

// formImage lee el fichero multipart "image" con límite de tamaño.
func formImage(c *fiber.Ctx, maxBytes int64) (string, []byte, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return "", nil, fmt.Errorf("%w: falta el fichero 'image'", domain.ErrInvalidInput)
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return "", nil, fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("la imagen supera el máximo de %d bytes", maxBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("abrir imagen: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("leer imagen: %w", err)
	}
	return fh.Filename, data, nil
}
