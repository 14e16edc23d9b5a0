package dto

import (
	"time"

	"github.com/jhoicas/albaranes-api/internal/domain/entity"
)

// CreateClientRequest entrada para crear un cliente.
type CreateClientRequest struct {
	Name    string          `json:"name" validate:"required,max=200"`
	Email   string          `json:"email" validate:"required,email"`
	Phone   string          `json:"phone" validate:"omitempty,max=30"`
	Address *AddressRequest `json:"address"`
	CIF     string          `json:"cif" validate:"required,max=20"`
}

// UpdateClientRequest actualización parcial: nil conserva el valor actual.
type UpdateClientRequest struct {
	Name    *string         `json:"name" validate:"omitempty,max=200"`
	Email   *string         `json:"email" validate:"omitempty,email"`
	Phone   *string         `json:"phone" validate:"omitempty,max=30"`
	Address *AddressRequest `json:"address"`
	CIF     *string         `json:"cif" validate:"omitempty,max=20"`
}

// ClientResponse salida de un cliente.
type ClientResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Address   entity.Address `json:"address"`
	CIF       string         `json:"cif"`
	CreatedBy *UserSummary   `json:"created_by,omitempty"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ClientListResponse lista de clientes.
type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
}

// ClientSummary cliente expandido dentro de proyectos y albaranes.
type ClientSummary struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	CIF     string         `json:"cif"`
	Address entity.Address `json:"address"`
}
