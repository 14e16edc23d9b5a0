package ports

import (
	"context"

	"github.com/jhoicas/albaranes-api/internal/domain/entity"
)

// DeliveryNoteDocument albarán con sus relaciones expandidas para renderizar.
// Project, Client y Creator pueden ser nil si la referencia ya no existe.
type DeliveryNoteDocument struct {
	Note    *entity.DeliveryNote
	Project *entity.Project
	Client  *entity.Client
	Creator *entity.User
	// SignatureImage bytes ya conocidos de la firma; si es nil y Note.Signature
	// tiene URL, el generador la descarga.
	SignatureImage []byte
}

// DeliveryNotePDFGenerator define el puerto de renderizado del albarán.
// Siempre debe completar el documento aunque la firma no pueda cargarse.
type DeliveryNotePDFGenerator interface {
	GenerateDeliveryNotePDF(ctx context.Context, doc DeliveryNoteDocument) ([]byte, error)
}

// ImageFetcher descarga una imagen remota (firma) con timeout.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
