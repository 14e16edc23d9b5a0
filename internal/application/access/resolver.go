// Package access completa el principal autenticado con los datos vigentes del usuario.
package access

import (
	"context"
	"fmt"

	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
)

// Resolver resuelve el CIF de empresa del principal desde el store. El CIF es
// el propio company.cif del usuario; un invitado sin empresa propia no hereda
// la del invitador para visibilidad.
type Resolver struct {
	users repository.UserRepository
}

// NewResolver construye el resolver.
func NewResolver(users repository.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// Resolve carga el usuario del token y devuelve el principal completo.
// Un usuario inexistente o dado de baja equivale a token inválido.
func (r *Resolver) Resolve(ctx context.Context, p policy.Principal) (policy.Principal, error) {
	if p.ID == "" {
		return policy.Principal{}, domain.ErrUnauthorized
	}
	u, err := r.users.GetByID(ctx, p.ID)
	if err != nil {
		return policy.Principal{}, fmt.Errorf("resolver principal: %w", err)
	}
	if u == nil {
		return policy.Principal{}, domain.ErrUnauthorized
	}
	return policy.Principal{
		ID:         u.ID,
		Role:       u.Role,
		InvitedBy:  u.CompanyOwner,
		CompanyCIF: policy.NormalizeCIF(u.Company.CIF),
	}, nil
}
