package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/albaranes-api/internal/application/access"
	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
)

// ProjectUseCase ciclo de vida de proyectos. Lectura y escritura: creador o
// mismo companyCif. companyCif se deriva siempre del usuario autenticado.
type ProjectUseCase struct {
	repo     repository.ProjectRepository
	clients  repository.ClientRepository
	users    repository.UserRepository
	resolver *access.Resolver
}

// NewProjectUseCase construye el caso de uso.
func NewProjectUseCase(
	repo repository.ProjectRepository,
	clients repository.ClientRepository,
	users repository.UserRepository,
	resolver *access.Resolver,
) *ProjectUseCase {
	return &ProjectUseCase{repo: repo, clients: clients, users: users, resolver: resolver}
}

// Create crea un proyecto. Falla con conflicto si otro proyecto visible
// comparte name o project_code.
func (uc *ProjectUseCase) Create(ctx context.Context, principal policy.Principal, in dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeCreate(p); err != nil {
		return nil, err
	}
	if err := uc.checkClient(ctx, p, in.ClientID); err != nil {
		return nil, err
	}
	dup, err := uc.repo.ExistsDuplicate(ctx, policy.VisibilityFilter(p, policy.KindProject), in.Name, in.ProjectCode, "")
	if err != nil {
		return nil, fmt.Errorf("comprobar duplicados: %w", err)
	}
	if dup {
		return nil, domain.ErrProjectExists
	}
	now := time.Now().UTC()
	project := &entity.Project{
		ID:          uuid.New().String(),
		Name:        in.Name,
		ProjectCode: in.ProjectCode,
		Email:       in.Email,
		Code:        in.Code,
		Address:     in.Address.ToEntity(),
		ClientID:    in.ClientID,
		CreatedBy:   p.ID,
		CompanyCIF:  p.CompanyCIF,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("crear proyecto: %w", err)
	}
	return uc.toResponse(ctx, uc.refs(), project)
}

// Update actualización parcial. Recalcula companyCif desde el principal.
func (uc *ProjectUseCase) Update(ctx context.Context, principal policy.Principal, id string, in dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	p, project, err := uc.loadForMutation(ctx, principal, id, repository.StateActive)
	if err != nil {
		return nil, err
	}
	renamed := false
	if in.Name != nil {
		renamed = renamed || *in.Name != project.Name
		project.Name = *in.Name
	}
	if in.ProjectCode != nil {
		renamed = renamed || *in.ProjectCode != project.ProjectCode
		project.ProjectCode = *in.ProjectCode
	}
	if in.Email != nil {
		project.Email = *in.Email
	}
	if in.Code != nil {
		project.Code = *in.Code
	}
	if in.Address != nil {
		project.Address = in.Address.ToEntity()
	}
	if in.ClientID != nil && *in.ClientID != project.ClientID {
		if err := uc.checkClient(ctx, p, *in.ClientID); err != nil {
			return nil, err
		}
		project.ClientID = *in.ClientID
	}
	if renamed {
		dup, err := uc.repo.ExistsDuplicate(ctx, policy.VisibilityFilter(p, policy.KindProject), project.Name, project.ProjectCode, project.ID)
		if err != nil {
			return nil, fmt.Errorf("comprobar duplicados: %w", err)
		}
		if dup {
			return nil, domain.ErrProjectExists
		}
	}
	project.CompanyCIF = p.CompanyCIF
	project.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("actualizar proyecto: %w", err)
	}
	return uc.toResponse(ctx, uc.refs(), project)
}

// List proyectos activos visibles.
func (uc *ProjectUseCase) List(ctx context.Context, principal policy.Principal) (*dto.ProjectListResponse, error) {
	return uc.list(ctx, principal, repository.StateActive)
}

// ListArchived proyectos archivados visibles.
func (uc *ProjectUseCase) ListArchived(ctx context.Context, principal policy.Principal) (*dto.ProjectListResponse, error) {
	return uc.list(ctx, principal, repository.StateArchived)
}

func (uc *ProjectUseCase) list(ctx context.Context, principal policy.Principal, state repository.RecordState) (*dto.ProjectListResponse, error) {
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, policy.VisibilityFilter(p, policy.KindProject), state)
	if err != nil {
		return nil, fmt.Errorf("listar proyectos: %w", err)
	}
	refs := uc.refs()
	items := make([]dto.ProjectResponse, 0, len(list))
	for _, pr := range list {
		out, err := uc.toResponse(ctx, refs, pr)
		if err != nil {
			return nil, err
		}
		items = append(items, *out)
	}
	return &dto.ProjectListResponse{Items: items}, nil
}

// GetByID proyecto activo visible.
func (uc *ProjectUseCase) GetByID(ctx context.Context, principal policy.Principal, id string) (*dto.ProjectResponse, error) {
	if err := access.ValidateID(id); err != nil {
		return nil, err
	}
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	project, err := uc.repo.FindOne(ctx, id, policy.VisibilityFilter(p, policy.KindProject), repository.StateActive)
	if err != nil {
		return nil, fmt.Errorf("obtener proyecto: %w", err)
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	return uc.toResponse(ctx, uc.refs(), project)
}

// Archive borrado lógico.
func (uc *ProjectUseCase) Archive(ctx context.Context, principal policy.Principal, id string) error {
	_, project, err := uc.loadForMutation(ctx, principal, id, repository.StateActive)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := uc.repo.SetDeletedAt(ctx, project.ID, &now); err != nil {
		return fmt.Errorf("archivar proyecto: %w", err)
	}
	return nil
}

// Restore recupera un proyecto archivado.
func (uc *ProjectUseCase) Restore(ctx context.Context, principal policy.Principal, id string) (*dto.ProjectResponse, error) {
	_, project, err := uc.loadForMutation(ctx, principal, id, repository.StateArchived)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.SetDeletedAt(ctx, project.ID, nil); err != nil {
		return nil, fmt.Errorf("restaurar proyecto: %w", err)
	}
	project.DeletedAt = nil
	return uc.toResponse(ctx, uc.refs(), project)
}

// Destroy borrado físico (activo o archivado).
func (uc *ProjectUseCase) Destroy(ctx context.Context, principal policy.Principal, id string) error {
	_, project, err := uc.loadForMutation(ctx, principal, id, repository.StateAny)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, project.ID); err != nil {
		return fmt.Errorf("eliminar proyecto: %w", err)
	}
	return nil
}

// checkClient el cliente referenciado debe ser activo y visible para el principal.
func (uc *ProjectUseCase) checkClient(ctx context.Context, p policy.Principal, clientID string) error {
	if err := access.ValidateID(clientID); err != nil {
		return err
	}
	client, err := uc.clients.FindOne(ctx, clientID, policy.VisibilityFilter(p, policy.KindClient), repository.StateActive)
	if err != nil {
		return fmt.Errorf("obtener cliente: %w", err)
	}
	if client == nil {
		return fmt.Errorf("cliente %s: %w", clientID, domain.ErrNotFound)
	}
	return nil
}

func (uc *ProjectUseCase) loadForMutation(ctx context.Context, principal policy.Principal, id string, state repository.RecordState) (policy.Principal, *entity.Project, error) {
	if err := access.ValidateID(id); err != nil {
		return policy.Principal{}, nil, err
	}
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return policy.Principal{}, nil, err
	}
	scope, err := policy.MutationScope(p, policy.KindProject)
	if err != nil {
		return policy.Principal{}, nil, err
	}
	project, err := uc.repo.FindOne(ctx, id, scope, state)
	if err != nil {
		return policy.Principal{}, nil, fmt.Errorf("obtener proyecto: %w", err)
	}
	if project == nil {
		return policy.Principal{}, nil, domain.ErrNotFound
	}
	return p, project, nil
}

func (uc *ProjectUseCase) refs() *access.Refs {
	return access.NewRefs(uc.users, uc.clients, nil)
}

func (uc *ProjectUseCase) toResponse(ctx context.Context, refs *access.Refs, pr *entity.Project) (*dto.ProjectResponse, error) {
	creator, err := refs.Creator(ctx, pr.CreatedBy)
	if err != nil {
		return nil, err
	}
	client, err := refs.ClientSummary(ctx, pr.ClientID)
	if err != nil {
		return nil, err
	}
	var cif *string
	if pr.CompanyCIF != "" {
		v := pr.CompanyCIF
		cif = &v
	}
	return &dto.ProjectResponse{
		ID:          pr.ID,
		Name:        pr.Name,
		ProjectCode: pr.ProjectCode,
		Email:       pr.Email,
		Code:        pr.Code,
		Address:     pr.Address,
		ClientID:    pr.ClientID,
		Client:      client,
		CompanyCIF:  cif,
		CreatedBy:   creator,
		DeletedAt:   pr.DeletedAt,
		CreatedAt:   pr.CreatedAt,
		UpdatedAt:   pr.UpdatedAt,
	}, nil
}
