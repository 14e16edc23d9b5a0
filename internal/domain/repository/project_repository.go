package repository

import (
	"context"
	"time"

	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
)

// ProjectRepository define el puerto de persistencia para Project.
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	// GetByID sin filtro de visibilidad ni de borrado; solo para expandir referencias.
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	FindOne(ctx context.Context, id string, scope policy.Scope, state RecordState) (*entity.Project, error)
	List(ctx context.Context, scope policy.Scope, state RecordState) ([]*entity.Project, error)
	// ExistsDuplicate busca proyectos activos visibles con el mismo name o projectCode,
	// excluyendo excludeID (vacío en creación).
	ExistsDuplicate(ctx context.Context, scope policy.Scope, name, projectCode, excludeID string) (bool, error)
	Update(ctx context.Context, project *entity.Project) error
	SetDeletedAt(ctx context.Context, id string, at *time.Time) error
	Delete(ctx context.Context, id string) error
}
