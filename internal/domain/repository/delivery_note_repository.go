package repository

import (
	"context"

	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
)

// DeliveryNoteRepository define el puerto de persistencia para albaranes (sin borrado lógico).
type DeliveryNoteRepository interface {
	Create(ctx context.Context, note *entity.DeliveryNote) error
	// GetByID sin filtro; la autorización la decide el llamador (lectura de PDF).
	GetByID(ctx context.Context, id string) (*entity.DeliveryNote, error)
	FindOne(ctx context.Context, id string, scope policy.Scope) (*entity.DeliveryNote, error)
	List(ctx context.Context, scope policy.Scope) ([]*entity.DeliveryNote, error)
	Update(ctx context.Context, note *entity.DeliveryNote) error
	Delete(ctx context.Context, id string) error
}
