// Package deliverynote ciclo de vida de albaranes y su documento PDF.
package deliverynote

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/albaranes-api/internal/application/access"
	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
	"github.com/jhoicas/albaranes-api/pkg/logger"
)

// UseCase albaranes: visibles y modificables solo por su creador. Un albarán
// firmado no se modifica ni se elimina.
type UseCase struct {
	repo      repository.DeliveryNoteRepository
	projects  repository.ProjectRepository
	clients   repository.ClientRepository
	users     repository.UserRepository
	resolver  *access.Resolver
	generator ports.DeliveryNotePDFGenerator
	artifacts ports.ArtifactStore
	log       *logger.Logger
	// persistTries intentos del guardado final del pipeline.
	persistTries uint64
}

// Deps dependencias del caso de uso.
type Deps struct {
	Notes     repository.DeliveryNoteRepository
	Projects  repository.ProjectRepository
	Clients   repository.ClientRepository
	Users     repository.UserRepository
	Resolver  *access.Resolver
	Generator ports.DeliveryNotePDFGenerator
	Artifacts ports.ArtifactStore
	Logger    *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(d Deps) *UseCase {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		repo:         d.Notes,
		projects:     d.Projects,
		clients:      d.Clients,
		users:        d.Users,
		resolver:     d.Resolver,
		generator:    d.Generator,
		artifacts:    d.Artifacts,
		log:          log.Named("deliverynote"),
		persistTries: 3,
	}
}

// Create crea un albarán sobre un proyecto visible para el principal.
func (uc *UseCase) Create(ctx context.Context, principal policy.Principal, in dto.CreateDeliveryNoteRequest) (*dto.DeliveryNoteResponse, error) {
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeCreate(p); err != nil {
		return nil, err
	}
	if err := uc.checkProject(ctx, p, in.ProjectID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	date := now
	if in.Date != nil {
		date = in.Date.UTC()
	}
	note := &entity.DeliveryNote{
		ID:              uuid.New().String(),
		ProjectID:       in.ProjectID,
		CreatedBy:       p.ID,
		Description:     in.Description,
		WorkEntries:     toWorkEntries(in.WorkEntries),
		MaterialEntries: toMaterialEntries(in.MaterialEntries),
		Date:            date,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("crear albarán: %w", err)
	}
	return uc.toResponse(ctx, uc.refs(), note, true)
}

// Update actualización parcial de un albarán propio sin firmar.
func (uc *UseCase) Update(ctx context.Context, principal policy.Principal, id string, in dto.UpdateDeliveryNoteRequest) (*dto.DeliveryNoteResponse, error) {
	note, err := uc.loadForMutation(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if note.Signed() {
		return nil, domain.ErrSignedNoteUpdate
	}
	if in.Description != nil {
		note.Description = *in.Description
	}
	if in.WorkEntries != nil {
		note.WorkEntries = toWorkEntries(in.WorkEntries)
	}
	if in.MaterialEntries != nil {
		note.MaterialEntries = toMaterialEntries(in.MaterialEntries)
	}
	if in.Date != nil {
		note.Date = in.Date.UTC()
	}
	note.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("actualizar albarán: %w", err)
	}
	return uc.toResponse(ctx, uc.refs(), note, true)
}

// List albaranes del principal.
func (uc *UseCase) List(ctx context.Context, principal policy.Principal) (*dto.DeliveryNoteListResponse, error) {
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, policy.VisibilityFilter(p, policy.KindDeliveryNote))
	if err != nil {
		return nil, fmt.Errorf("listar albaranes: %w", err)
	}
	refs := uc.refs()
	items := make([]dto.DeliveryNoteResponse, 0, len(list))
	for _, n := range list {
		out, err := uc.toResponse(ctx, refs, n, false)
		if err != nil {
			return nil, err
		}
		items = append(items, *out)
	}
	return &dto.DeliveryNoteListResponse{Items: items}, nil
}

// GetByID detalle con creador, proyecto y cliente expandidos.
func (uc *UseCase) GetByID(ctx context.Context, principal policy.Principal, id string) (*dto.DeliveryNoteResponse, error) {
	if err := access.ValidateID(id); err != nil {
		return nil, err
	}
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	note, err := uc.repo.FindOne(ctx, id, policy.VisibilityFilter(p, policy.KindDeliveryNote))
	if err != nil {
		return nil, fmt.Errorf("obtener albarán: %w", err)
	}
	if note == nil {
		return nil, domain.ErrNotFound
	}
	return uc.toResponse(ctx, uc.refs(), note, true)
}

// Destroy borrado físico; prohibido si el albarán está firmado.
func (uc *UseCase) Destroy(ctx context.Context, principal policy.Principal, id string) error {
	note, err := uc.loadForMutation(ctx, principal, id)
	if err != nil {
		return err
	}
	if note.Signed() {
		return domain.ErrSignedNoteDelete
	}
	if err := uc.repo.Delete(ctx, note.ID); err != nil {
		return fmt.Errorf("eliminar albarán: %w", err)
	}
	return nil
}

func (uc *UseCase) checkProject(ctx context.Context, p policy.Principal, projectID string) error {
	if err := access.ValidateID(projectID); err != nil {
		return err
	}
	project, err := uc.projects.FindOne(ctx, projectID, policy.VisibilityFilter(p, policy.KindProject), repository.StateActive)
	if err != nil {
		return fmt.Errorf("obtener proyecto: %w", err)
	}
	if project == nil {
		return fmt.Errorf("proyecto %s: %w", projectID, domain.ErrNotFound)
	}
	return nil
}

func (uc *UseCase) loadForMutation(ctx context.Context, principal policy.Principal, id string) (*entity.DeliveryNote, error) {
	if err := access.ValidateID(id); err != nil {
		return nil, err
	}
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	scope, err := policy.MutationScope(p, policy.KindDeliveryNote)
	if err != nil {
		return nil, err
	}
	note, err := uc.repo.FindOne(ctx, id, scope)
	if err != nil {
		return nil, fmt.Errorf("obtener albarán: %w", err)
	}
	if note == nil {
		return nil, domain.ErrNotFound
	}
	return note, nil
}

func (uc *UseCase) refs() *access.Refs {
	return access.NewRefs(uc.users, uc.clients, uc.projects)
}

func (uc *UseCase) toResponse(ctx context.Context, refs *access.Refs, n *entity.DeliveryNote, withProject bool) (*dto.DeliveryNoteResponse, error) {
	creator, err := refs.Creator(ctx, n.CreatedBy)
	if err != nil {
		return nil, err
	}
	out := &dto.DeliveryNoteResponse{
		ID:              n.ID,
		ProjectID:       n.ProjectID,
		Description:     n.Description,
		WorkEntries:     make([]dto.WorkEntryResponse, 0, len(n.WorkEntries)),
		MaterialEntries: make([]dto.MaterialEntryResponse, 0, len(n.MaterialEntries)),
		Date:            n.Date,
		Signature:       n.Signature,
		Signed:          n.Signed(),
		PDFURL:          n.PDFURL,
		CreatedBy:       creator,
		CreatedAt:       n.CreatedAt,
		UpdatedAt:       n.UpdatedAt,
	}
	for _, w := range n.WorkEntries {
		out.WorkEntries = append(out.WorkEntries, dto.WorkEntryResponse{Person: w.Person, Hours: w.Hours})
	}
	for _, m := range n.MaterialEntries {
		out.MaterialEntries = append(out.MaterialEntries, dto.MaterialEntryResponse{Name: m.Name, Quantity: m.Quantity})
	}
	if withProject {
		if out.Project, err = refs.ProjectSummary(ctx, n.ProjectID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func toWorkEntries(in []dto.WorkEntryRequest) []entity.WorkEntry {
	out := make([]entity.WorkEntry, 0, len(in))
	for _, w := range in {
		out = append(out, entity.WorkEntry{Person: w.Person, Hours: w.Hours})
	}
	return out
}

func toMaterialEntries(in []dto.MaterialEntryRequest) []entity.MaterialEntry {
	out := make([]entity.MaterialEntry, 0, len(in))
	for _, m := range in {
		out = append(out, entity.MaterialEntry{Name: m.Name, Quantity: m.Quantity})
	}
	return out
}
