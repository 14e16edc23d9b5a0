package memory

import (
	"context"
	"time"

	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo repositorio de clientes en memoria.
type ClientRepo struct {
	t *table[*entity.Client]
}

// NewClientRepository construye el repositorio vacío.
func NewClientRepository() *ClientRepo {
	return &ClientRepo{t: newTable(cloneClient)}
}

func cloneClient(c *entity.Client) *entity.Client {
	cp := *c
	cp.Address = cloneAddress(c.Address)
	cp.DeletedAt = cloneTime(c.DeletedAt)
	return &cp
}

func clientVisible(c *entity.Client, scope policy.Scope, state repository.RecordState) bool {
	return state.Includes(c.Archived()) && scope.Matches(c.CreatedBy, c.CIF)
}

func (r *ClientRepo) Create(_ context.Context, client *entity.Client) error {
	if r.t.exists(client.ID) {
		return domain.ErrDuplicate
	}
	r.t.put(client.ID, client)
	return nil
}

func (r *ClientRepo) FindOne(_ context.Context, id string, scope policy.Scope, state repository.RecordState) (*entity.Client, error) {
	c, ok := r.t.get(id)
	if !ok || !clientVisible(c, scope, state) {
		return nil, nil
	}
	return c, nil
}

func (r *ClientRepo) List(_ context.Context, scope policy.Scope, state repository.RecordState) ([]*entity.Client, error) {
	return r.t.filter(func(c *entity.Client) bool { return clientVisible(c, scope, state) },
		func(c *entity.Client) time.Time { return c.CreatedAt }), nil
}

func (r *ClientRepo) Update(_ context.Context, client *entity.Client) error {
	if !r.t.exists(client.ID) {
		return domain.ErrNotFound
	}
	r.t.put(client.ID, client)
	return nil
}

func (r *ClientRepo) SetDeletedAt(_ context.Context, id string, at *time.Time) error {
	ok := r.t.update(id, func(c *entity.Client) *entity.Client {
		c.DeletedAt = cloneTime(at)
		c.UpdatedAt = time.Now().UTC()
		return c
	})
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ClientRepo) Delete(_ context.Context, id string) error {
	if !r.t.exists(id) {
		return domain.ErrNotFound
	}
	r.t.remove(id)
	return nil
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	c, ok := r.t.get(id)
	if !ok {
		return nil, nil
	}
	return c, nil
}
