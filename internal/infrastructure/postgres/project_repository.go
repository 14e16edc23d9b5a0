package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

const projectColumns = `id, name, project_code, email, code, address, client_id, created_by, company_cif,
	deleted_at, created_at, updated_at`

// ProjectRepo proyectos; la rama compartida del scope compara contra company_cif.
type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.ProjectCode, p.Email, p.Code, p.Address, p.ClientID, p.CreatedBy,
		nullIfEmpty(p.CompanyCIF), p.DeletedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	w := &where{}
	w.and("id = " + w.arg(id))
	return r.findOne(ctx, w)
}

func (r *ProjectRepo) FindOne(ctx context.Context, id string, scope policy.Scope, state repository.RecordState) (*entity.Project, error) {
	w := &where{}
	w.and("id = " + w.arg(id))
	w.scope(scope, "company_cif")
	w.state(state)
	return r.findOne(ctx, w)
}

func (r *ProjectRepo) findOne(ctx context.Context, w *where) (*entity.Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects`+w.String(), w.args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepo) List(ctx context.Context, scope policy.Scope, state repository.RecordState) ([]*entity.Project, error) {
	w := &where{}
	w.scope(scope, "company_cif")
	w.state(state)
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects`+w.String()+` ORDER BY created_at`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	list := []*entity.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ExistsDuplicate proyectos activos visibles con el mismo name o project_code.
func (r *ProjectRepo) ExistsDuplicate(ctx context.Context, scope policy.Scope, name, projectCode, excludeID string) (bool, error) {
	w := &where{}
	w.scope(scope, "company_cif")
	w.state(repository.StateActive)
	w.and(fmt.Sprintf("(name = %s OR project_code = %s)", w.arg(name), w.arg(projectCode)))
	if excludeID != "" {
		w.and("id <> " + w.arg(excludeID))
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects`+w.String()+`)`, w.args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check duplicate project: %w", err)
	}
	return exists, nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	query := `
		UPDATE projects SET name = $2, project_code = $3, email = $4, code = $5, address = $6,
			client_id = $7, company_cif = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.ProjectCode, p.Email, p.Code, p.Address, p.ClientID, nullIfEmpty(p.CompanyCIF), p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProjectRepo) SetDeletedAt(ctx context.Context, id string, at *time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE projects SET deleted_at = $2, updated_at = now() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("set project deleted_at: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*entity.Project, error) {
	var p entity.Project
	var cif *string
	err := row.Scan(&p.ID, &p.Name, &p.ProjectCode, &p.Email, &p.Code, &p.Address, &p.ClientID,
		&p.CreatedBy, &cif, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.CompanyCIF = deref(cif)
	return &p, nil
}
