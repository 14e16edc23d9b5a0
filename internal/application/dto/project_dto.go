package dto

import (
	"time"

	"github.com/jhoicas/albaranes-api/internal/domain/entity"
)

// CreateProjectRequest entrada para crear un proyecto. company_cif no se acepta:
// se deriva del usuario autenticado.
type CreateProjectRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	ProjectCode string          `json:"project_code" validate:"required,max=100"`
	Email       string          `json:"email" validate:"required,email"`
	Code        string          `json:"code" validate:"omitempty,max=100"`
	Address     *AddressRequest `json:"address"`
	ClientID    string          `json:"client_id" validate:"required,uuid"`
}

// UpdateProjectRequest actualización parcial del proyecto.
type UpdateProjectRequest struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=200"`
	ProjectCode *string         `json:"project_code" validate:"omitempty,min=1,max=100"`
	Email       *string         `json:"email" validate:"omitempty,email"`
	Code        *string         `json:"code" validate:"omitempty,max=100"`
	Address     *AddressRequest `json:"address"`
	ClientID    *string         `json:"client_id" validate:"omitempty,uuid"`
}

// ProjectResponse salida de un proyecto con cliente y creador expandidos.
type ProjectResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ProjectCode string         `json:"project_code"`
	Email       string         `json:"email"`
	Code        string         `json:"code"`
	Address     entity.Address `json:"address"`
	ClientID    string         `json:"client_id"`
	Client      *ClientSummary `json:"client,omitempty"`
	CompanyCIF  *string        `json:"company_cif"`
	CreatedBy   *UserSummary   `json:"created_by,omitempty"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ProjectListResponse lista de proyectos.
type ProjectListResponse struct {
	Items []ProjectResponse `json:"items"`
}

// ProjectSummary proyecto expandido dentro de un albarán.
type ProjectSummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ProjectCode string         `json:"project_code"`
	Address     entity.Address `json:"address"`
	Client      *ClientSummary `json:"client,omitempty"`
}
