package memory

import (
	"context"
	"time"

	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo repositorio de proyectos en memoria.
type ProjectRepo struct {
	t *table[*entity.Project]
}

// NewProjectRepository construye el repositorio vacío.
func NewProjectRepository() *ProjectRepo {
	return &ProjectRepo{t: newTable(cloneProject)}
}

func cloneProject(p *entity.Project) *entity.Project {
	cp := *p
	cp.Address = cloneAddress(p.Address)
	cp.DeletedAt = cloneTime(p.DeletedAt)
	return &cp
}

func projectVisible(p *entity.Project, scope policy.Scope, state repository.RecordState) bool {
	return state.Includes(p.Archived()) && scope.Matches(p.CreatedBy, p.CompanyCIF)
}

func projectCreated(p *entity.Project) time.Time { return p.CreatedAt }

func (r *ProjectRepo) Create(_ context.Context, project *entity.Project) error {
	if r.t.exists(project.ID) {
		return domain.ErrDuplicate
	}
	r.t.put(project.ID, project)
	return nil
}

func (r *ProjectRepo) FindOne(_ context.Context, id string, scope policy.Scope, state repository.RecordState) (*entity.Project, error) {
	p, ok := r.t.get(id)
	if !ok || !projectVisible(p, scope, state) {
		return nil, nil
	}
	return p, nil
}

func (r *ProjectRepo) List(_ context.Context, scope policy.Scope, state repository.RecordState) ([]*entity.Project, error) {
	return r.t.filter(func(p *entity.Project) bool { return projectVisible(p, scope, state) }, projectCreated), nil
}

func (r *ProjectRepo) ExistsDuplicate(_ context.Context, scope policy.Scope, name, projectCode, excludeID string) (bool, error) {
	found := r.t.filter(func(p *entity.Project) bool {
		if p.ID == excludeID || !projectVisible(p, scope, repository.StateActive) {
			return false
		}
		return p.Name == name || p.ProjectCode == projectCode
	}, projectCreated)
	return len(found) > 0, nil
}

func (r *ProjectRepo) Update(_ context.Context, project *entity.Project) error {
	if !r.t.exists(project.ID) {
		return domain.ErrNotFound
	}
	r.t.put(project.ID, project)
	return nil
}

func (r *ProjectRepo) SetDeletedAt(_ context.Context, id string, at *time.Time) error {
	ok := r.t.update(id, func(p *entity.Project) *entity.Project {
		p.DeletedAt = cloneTime(at)
		p.UpdatedAt = time.Now().UTC()
		return p
	})
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProjectRepo) Delete(_ context.Context, id string) error {
	if !r.t.exists(id) {
		return domain.ErrNotFound
	}
	r.t.remove(id)
	return nil
}

func (r *ProjectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	p, ok := r.t.get(id)
	if !ok {
		return nil, nil
	}
	return p, nil
}
