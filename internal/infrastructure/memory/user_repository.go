package memory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo repositorio de usuarios en memoria.
type UserRepo struct {
	t *table[*entity.User]
}

// NewUserRepository construye el repositorio vacío.
func NewUserRepository() *UserRepo {
	return &UserRepo{t: newTable(cloneUser)}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Address = cloneAddress(u.Address)
	c.Company.Number = cloneInt(u.Company.Number)
	c.Company.Postal = cloneInt(u.Company.Postal)
	c.DeletedAt = cloneTime(u.DeletedAt)
	return &c
}

func cloneAddress(a entity.Address) entity.Address {
	a.Number = cloneInt(a.Number)
	a.Postal = cloneInt(a.Postal)
	return a
}

// Create persiste un usuario; el email es único incluso frente a usuarios dados de baja.
func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	email := strings.ToLower(user.Email)
	dup := r.t.filter(func(u *entity.User) bool { return strings.ToLower(u.Email) == email }, userCreated)
	if len(dup) > 0 || r.t.exists(user.ID) {
		return domain.ErrEmailAlreadyExists
	}
	r.t.put(user.ID, user)
	return nil
}

// GetByID obtiene un usuario activo por ID.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.t.get(id)
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	return u, nil
}

// GetByEmail obtiene un usuario activo por email.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	found := r.t.filter(func(u *entity.User) bool {
		return u.DeletedAt == nil && strings.ToLower(u.Email) == email
	}, userCreated)
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// Update reemplaza el usuario almacenado.
func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	if !r.t.exists(user.ID) {
		return domain.ErrUserNotFound
	}
	r.t.put(user.ID, user)
	return nil
}

// SoftDelete marca el usuario como dado de baja.
func (r *UserRepo) SoftDelete(_ context.Context, id string, at time.Time) error {
	ok := r.t.update(id, func(u *entity.User) *entity.User {
		u.DeletedAt = &at
		u.UpdatedAt = at
		return u
	})
	if !ok {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete elimina el usuario físicamente.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	if !r.t.exists(id) {
		return domain.ErrUserNotFound
	}
	r.t.remove(id)
	return nil
}

func userCreated(u *entity.User) time.Time { return u.CreatedAt }
