// Package policy calcula qué registros puede ver o modificar un usuario autenticado.
//
// Regla general: el creador (createdBy) siempre tiene acceso. Si el usuario tiene
// CIF de empresa, la lectura se amplía a clientes con ese CIF y la lectura y
// edición a proyectos con ese companyCif. Los albaranes son solo del creador.
package policy

import (
	"strings"

	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
)

// Kind tipo de recurso protegido.
type Kind int

const (
	KindClient Kind = iota
	KindProject
	KindDeliveryNote
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindProject:
		return "project"
	case KindDeliveryNote:
		return "deliverynote"
	default:
		return "unknown"
	}
}

// Principal usuario autenticado. CompanyCIF se resuelve desde el usuario
// (no viaja en el token) y vacío significa "sin empresa".
type Principal struct {
	ID         string
	Role       string
	InvitedBy  string
	CompanyCIF string
}

// IsGuest indica si el principal es un invitado.
func (p Principal) IsGuest() bool { return p.Role == entity.RoleGuest }

// NormalizeCIF recorta espacios; la cadena vacía equivale a CIF ausente.
func NormalizeCIF(cif string) string {
	return strings.TrimSpace(cif)
}

// Scope predicado OR: createdBy == CreatedBy, o bien etiqueta compartida == SharedTag.
// Con SharedTag vacío la rama se omite (nunca se compara contra "").
type Scope struct {
	CreatedBy string
	SharedTag string
}

// HasSharedBranch indica si el predicado incluye la rama por CIF.
func (s Scope) HasSharedBranch() bool { return s.SharedTag != "" }

// Matches evalúa el predicado sobre el creador y la etiqueta de un registro.
func (s Scope) Matches(createdBy, tag string) bool {
	if createdBy == s.CreatedBy {
		return true
	}
	return s.HasSharedBranch() && NormalizeCIF(tag) == s.SharedTag
}

// VisibilityFilter predicado de lectura para list/getById.
func VisibilityFilter(p Principal, kind Kind) Scope {
	scope := Scope{CreatedBy: p.ID}
	switch kind {
	case KindClient, KindProject:
		scope.SharedTag = NormalizeCIF(p.CompanyCIF)
	}
	return scope
}

// MutationScope predicado para update/archive/restore/destroy.
// Clientes y albaranes: solo el creador. Proyectos: creador o mismo companyCif.
// Los invitados nunca modifican recursos: para ellos el registro no existe.
func MutationScope(p Principal, kind Kind) (Scope, error) {
	if p.IsGuest() {
		return Scope{}, domain.ErrNotFound
	}
	scope := Scope{CreatedBy: p.ID}
	if kind == KindProject {
		scope.SharedTag = NormalizeCIF(p.CompanyCIF)
	}
	return scope, nil
}

// AuthorizeCreate los invitados no pueden crear recursos.
func AuthorizeCreate(p Principal) error {
	if p.IsGuest() {
		return domain.ErrForbidden
	}
	return nil
}

// AuthorizePDFRead permite descargar el PDF al creador o a un invitado
// cuyo invitador sea el creador del albarán.
func AuthorizePDFRead(p Principal, note *entity.DeliveryNote) error {
	if note == nil {
		return domain.ErrNotFound
	}
	if p.ID == note.CreatedBy {
		return nil
	}
	if p.IsGuest() && p.InvitedBy != "" && p.InvitedBy == note.CreatedBy {
		return nil
	}
	return domain.ErrForbidden
}
