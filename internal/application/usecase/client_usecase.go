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

// ClientUseCase ciclo de vida de clientes. Lectura: creador o mismo CIF;
// escritura: solo el creador.
type ClientUseCase struct {
	repo     repository.ClientRepository
	users    repository.UserRepository
	resolver *access.Resolver
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository, users repository.UserRepository, resolver *access.Resolver) *ClientUseCase {
	return &ClientUseCase{repo: repo, users: users, resolver: resolver}
}

// Create crea un cliente; el cif se toma del payload tal cual.
func (uc *ClientUseCase) Create(ctx context.Context, principal policy.Principal, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeCreate(p); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	client := &entity.Client{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address.ToEntity(),
		CIF:       in.CIF,
		CreatedBy: p.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("crear cliente: %w", err)
	}
	return uc.toResponse(ctx, access.NewRefs(uc.users, nil, nil), client)
}

// Update aplica una actualización parcial sobre un cliente propio y activo.
func (uc *ClientUseCase) Update(ctx context.Context, principal policy.Principal, id string, in dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := uc.loadForMutation(ctx, principal, id, repository.StateActive)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		client.Name = *in.Name
	}
	if in.Email != nil {
		client.Email = *in.Email
	}
	if in.Phone != nil {
		client.Phone = *in.Phone
	}
	if in.Address != nil {
		client.Address = in.Address.ToEntity()
	}
	if in.CIF != nil {
		client.CIF = *in.CIF
	}
	client.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("actualizar cliente: %w", err)
	}
	return uc.toResponse(ctx, access.NewRefs(uc.users, nil, nil), client)
}

// List clientes activos visibles para el principal.
func (uc *ClientUseCase) List(ctx context.Context, principal policy.Principal) (*dto.ClientListResponse, error) {
	return uc.list(ctx, principal, repository.StateActive)
}

// ListArchived clientes archivados visibles para el principal.
func (uc *ClientUseCase) ListArchived(ctx context.Context, principal policy.Principal) (*dto.ClientListResponse, error) {
	return uc.list(ctx, principal, repository.StateArchived)
}

func (uc *ClientUseCase) list(ctx context.Context, principal policy.Principal, state repository.RecordState) (*dto.ClientListResponse, error) {
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, policy.VisibilityFilter(p, policy.KindClient), state)
	if err != nil {
		return nil, fmt.Errorf("listar clientes: %w", err)
	}
	refs := access.NewRefs(uc.users, nil, nil)
	items := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out, err := uc.toResponse(ctx, refs, c)
		if err != nil {
			return nil, err
		}
		items = append(items, *out)
	}
	return &dto.ClientListResponse{Items: items}, nil
}

// GetByID cliente activo visible para el principal.
func (uc *ClientUseCase) GetByID(ctx context.Context, principal policy.Principal, id string) (*dto.ClientResponse, error) {
	if err := access.ValidateID(id); err != nil {
		return nil, err
	}
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	client, err := uc.repo.FindOne(ctx, id, policy.VisibilityFilter(p, policy.KindClient), repository.StateActive)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	return uc.toResponse(ctx, access.NewRefs(uc.users, nil, nil), client)
}

// Archive borrado lógico de un cliente propio.
func (uc *ClientUseCase) Archive(ctx context.Context, principal policy.Principal, id string) error {
	client, err := uc.loadForMutation(ctx, principal, id, repository.StateActive)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := uc.repo.SetDeletedAt(ctx, client.ID, &now); err != nil {
		return fmt.Errorf("archivar cliente: %w", err)
	}
	return nil
}

// Restore recupera un cliente archivado propio.
func (uc *ClientUseCase) Restore(ctx context.Context, principal policy.Principal, id string) (*dto.ClientResponse, error) {
	client, err := uc.loadForMutation(ctx, principal, id, repository.StateArchived)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.SetDeletedAt(ctx, client.ID, nil); err != nil {
		return nil, fmt.Errorf("restaurar cliente: %w", err)
	}
	client.DeletedAt = nil
	return uc.toResponse(ctx, access.NewRefs(uc.users, nil, nil), client)
}

// Destroy borrado físico; no filtra por estado de borrado.
func (uc *ClientUseCase) Destroy(ctx context.Context, principal policy.Principal, id string) error {
	client, err := uc.loadForMutation(ctx, principal, id, repository.StateAny)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, client.ID); err != nil {
		return fmt.Errorf("eliminar cliente: %w", err)
	}
	return nil
}

func (uc *ClientUseCase) loadForMutation(ctx context.Context, principal policy.Principal, id string, state repository.RecordState) (*entity.Client, error) {
	if err := access.ValidateID(id); err != nil {
		return nil, err
	}
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	scope, err := policy.MutationScope(p, policy.KindClient)
	if err != nil {
		return nil, err
	}
	client, err := uc.repo.FindOne(ctx, id, scope, state)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	return client, nil
}

func (uc *ClientUseCase) toResponse(ctx context.Context, refs *access.Refs, c *entity.Client) (*dto.ClientResponse, error) {
	creator, err := refs.Creator(ctx, c.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CIF:       c.CIF,
		CreatedBy: creator,
		DeletedAt: c.DeletedAt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, nil
}
