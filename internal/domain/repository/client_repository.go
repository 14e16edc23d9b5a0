package repository

import (
	"context"
	"time"

	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
)

// ClientRepository define el puerto de persistencia para Client.
// Todas las lecturas se filtran por el scope de la política (creador OR cif).
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	// GetByID sin filtro de visibilidad ni de borrado; solo para expandir referencias.
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	FindOne(ctx context.Context, id string, scope policy.Scope, state RecordState) (*entity.Client, error)
	List(ctx context.Context, scope policy.Scope, state RecordState) ([]*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	// SetDeletedAt archiva (at != nil) o restaura (at == nil).
	SetDeletedAt(ctx context.Context, id string, at *time.Time) error
	Delete(ctx context.Context, id string) error
}
