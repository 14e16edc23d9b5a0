package dto

import "github.com/jhoicas/albaranes-api/internal/domain/entity"

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError error de validación de un campo concreto.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MessageResponse respuesta simple de confirmación.
type MessageResponse struct {
	Message string `json:"message"`
}

// AddressRequest dirección en peticiones; los campos ausentes quedan vacíos.
type AddressRequest struct {
	Street   string `json:"street" validate:"omitempty,max=200"`
	Number   *int   `json:"number" validate:"omitempty,min=0"`
	Postal   *int   `json:"postal" validate:"omitempty,min=0"`
	City     string `json:"city" validate:"omitempty,max=100"`
	Province string `json:"province" validate:"omitempty,max=100"`
}

// ToEntity convierte a la dirección de dominio.
func (a *AddressRequest) ToEntity() entity.Address {
	if a == nil {
		return entity.Address{}
	}
	return entity.Address{
		Street:   a.Street,
		Number:   a.Number,
		Postal:   a.Postal,
		City:     a.City,
		Province: a.Province,
	}
}

// UserSummary datos del creador expandidos para mostrar.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
