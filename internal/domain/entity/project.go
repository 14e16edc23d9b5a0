package entity

import "time"

// Project proyecto de un cliente. CompanyCIF se copia de la empresa del creador
// y amplía lectura y edición a usuarios con el mismo CIF; no es propiedad.
type Project struct {
	ID          string
	Name        string
	ProjectCode string // código interno
	Email       string
	Code        string // código externo
	Address     Address
	ClientID    string
	CreatedBy   string
	CompanyCIF  string // vacío = sin empresa
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Archived indica si el proyecto está borrado lógicamente.
func (p *Project) Archived() bool { return p.DeletedAt != nil }
