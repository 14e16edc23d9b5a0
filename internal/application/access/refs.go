package access

import (
	"context"
	"fmt"

	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
)

// Refs expande referencias (creador, cliente, proyecto) para mostrar.
// Cachea por petición: crear uno por operación con NewRefs.
type Refs struct {
	users    repository.UserRepository
	clients  repository.ClientRepository
	projects repository.ProjectRepository

	userCache    map[string]*entity.User
	clientCache  map[string]*entity.Client
	projectCache map[string]*entity.Project
}

// NewRefs construye el expansor. projects puede ser nil si no se necesita.
func NewRefs(users repository.UserRepository, clients repository.ClientRepository, projects repository.ProjectRepository) *Refs {
	return &Refs{
		users:        users,
		clients:      clients,
		projects:     projects,
		userCache:    map[string]*entity.User{},
		clientCache:  map[string]*entity.Client{},
		projectCache: map[string]*entity.Project{},
	}
}

// User devuelve el usuario referenciado o nil si ya no existe.
func (r *Refs) User(ctx context.Context, id string) (*entity.User, error) {
	if id == "" {
		return nil, nil
	}
	if u, ok := r.userCache[id]; ok {
		return u, nil
	}
	u, err := r.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("expandir usuario: %w", err)
	}
	r.userCache[id] = u
	return u, nil
}

// Creator resumen {id, name, email} del creador.
func (r *Refs) Creator(ctx context.Context, id string) (*dto.UserSummary, error) {
	u, err := r.User(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	return &dto.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}, nil
}

// Client devuelve el cliente referenciado (incluso archivado) o nil.
func (r *Refs) Client(ctx context.Context, id string) (*entity.Client, error) {
	if id == "" || r.clients == nil {
		return nil, nil
	}
	if c, ok := r.clientCache[id]; ok {
		return c, nil
	}
	c, err := r.clients.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("expandir cliente: %w", err)
	}
	r.clientCache[id] = c
	return c, nil
}

// ClientSummary resumen del cliente para proyectos y albaranes.
func (r *Refs) ClientSummary(ctx context.Context, id string) (*dto.ClientSummary, error) {
	c, err := r.Client(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	return &dto.ClientSummary{ID: c.ID, Name: c.Name, Email: c.Email, CIF: c.CIF, Address: c.Address}, nil
}

// Project devuelve el proyecto referenciado (incluso archivado) o nil.
func (r *Refs) Project(ctx context.Context, id string) (*entity.Project, error) {
	if id == "" || r.projects == nil {
		return nil, nil
	}
	if p, ok := r.projectCache[id]; ok {
		return p, nil
	}
	p, err := r.projects.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("expandir proyecto: %w", err)
	}
	r.projectCache[id] = p
	return p, nil
}

// ProjectSummary resumen del proyecto con su cliente.
func (r *Refs) ProjectSummary(ctx context.Context, id string) (*dto.ProjectSummary, error) {
	p, err := r.Project(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	client, err := r.ClientSummary(ctx, p.ClientID)
	if err != nil {
		return nil, err
	}
	return &dto.ProjectSummary{
		ID:          p.ID,
		Name:        p.Name,
		ProjectCode: p.ProjectCode,
		Address:     p.Address,
		Client:      client,
	}, nil
}
