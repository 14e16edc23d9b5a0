package memory

import (
	"context"
	"time"

	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
)

var _ repository.DeliveryNoteRepository = (*DeliveryNoteRepo)(nil)

// DeliveryNoteRepo repositorio de albaranes en memoria.
type DeliveryNoteRepo struct {
	t *table[*entity.DeliveryNote]
}

// NewDeliveryNoteRepository construye el repositorio vacío.
func NewDeliveryNoteRepository() *DeliveryNoteRepo {
	return &DeliveryNoteRepo{t: newTable(cloneNote)}
}

func cloneNote(n *entity.DeliveryNote) *entity.DeliveryNote {
	cp := *n
	cp.WorkEntries = append([]entity.WorkEntry(nil), n.WorkEntries...)
	cp.MaterialEntries = append([]entity.MaterialEntry(nil), n.MaterialEntries...)
	return &cp
}

func (r *DeliveryNoteRepo) Create(_ context.Context, note *entity.DeliveryNote) error {
	if r.t.exists(note.ID) {
		return domain.ErrDuplicate
	}
	r.t.put(note.ID, note)
	return nil
}

func (r *DeliveryNoteRepo) FindOne(_ context.Context, id string, scope policy.Scope) (*entity.DeliveryNote, error) {
	n, ok := r.t.get(id)
	if !ok || !scope.Matches(n.CreatedBy, "") {
		return nil, nil
	}
	return n, nil
}

func (r *DeliveryNoteRepo) List(_ context.Context, scope policy.Scope) ([]*entity.DeliveryNote, error) {
	return r.t.filter(func(n *entity.DeliveryNote) bool { return scope.Matches(n.CreatedBy, "") },
		func(n *entity.DeliveryNote) time.Time { return n.CreatedAt }), nil
}

func (r *DeliveryNoteRepo) Update(_ context.Context, note *entity.DeliveryNote) error {
	if !r.t.exists(note.ID) {
		return domain.ErrNotFound
	}
	r.t.put(note.ID, note)
	return nil
}

func (r *DeliveryNoteRepo) Delete(_ context.Context, id string) error {
	if !r.t.exists(id) {
		return domain.ErrNotFound
	}
	r.t.remove(id)
	return nil
}

func (r *DeliveryNoteRepo) GetByID(_ context.Context, id string) (*entity.DeliveryNote, error) {
	n, ok := r.t.get(id)
	if !ok {
		return nil, nil
	}
	return n, nil
}
