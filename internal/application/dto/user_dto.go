package dto

import (
	"time"

	"github.com/jhoicas/albaranes-api/internal/domain/entity"
)

// RegisterRequest entrada para registro.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Autonomo bool   `json:"autonomo"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// VerifyEmailRequest código de 6 dígitos recibido por email.
type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// RecoveryRequest solicitud de código de recuperación.
type RecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest nueva contraseña con el código de recuperación.
type ResetPasswordRequest struct {
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// PersonalDataRequest datos personales (onboarding).
type PersonalDataRequest struct {
	Name     string          `json:"name" validate:"required,max=100"`
	Surnames string          `json:"surnames" validate:"required,max=200"`
	NIF      string          `json:"nif" validate:"required,max=20"`
	Address  *AddressRequest `json:"address"`
}

// CompanyDataRequest datos de empresa. Se ignoran para autónomos.
type CompanyDataRequest struct {
	Name     string `json:"company_name"`
	CIF      string `json:"cif"`
	Street   string `json:"street"`
	Number   *int   `json:"number"`
	Postal   *int   `json:"postal"`
	City     string `json:"city"`
	Province string `json:"province"`
}

// CompanyDataRules reglas aplicadas solo a usuarios no autónomos.
type CompanyDataRules struct {
	Name     string `json:"company_name" validate:"required"`
	CIF      string `json:"cif" validate:"required"`
	Street   string `json:"street" validate:"required"`
	Number   *int   `json:"number" validate:"required"`
	Postal   *int   `json:"postal" validate:"required"`
	City     string `json:"city" validate:"required"`
	Province string `json:"province" validate:"required"`
}

// Rules vista de la petición con las reglas de obligatoriedad.
func (r CompanyDataRequest) Rules() CompanyDataRules {
	return CompanyDataRules(r)
}

// InviteRequest email del invitado.
type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UserResponse salida de un usuario (sin password ni códigos).
type UserResponse struct {
	ID         string         `json:"id"`
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	Surnames   string         `json:"surnames"`
	NIF        string         `json:"nif"`
	Role       string         `json:"role"`
	Status     int            `json:"status"`
	IsAutonomo bool           `json:"is_autonomo"`
	Address    entity.Address `json:"address"`
	Company    entity.Company `json:"company"`
	Logo       string         `json:"logo"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// AuthResponse token de sesión y usuario.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// RecoveryResponse token de recuperación (recover=true).
type RecoveryResponse struct {
	Message       string `json:"message"`
	RecoveryToken string `json:"recovery_token"`
}

// CompanyResponse empresa tras actualizarla.
type CompanyResponse struct {
	Message string         `json:"message"`
	Company entity.Company `json:"company"`
}

// LogoResponse URL del logo subido.
type LogoResponse struct {
	Message string `json:"message"`
	Logo    string `json:"logo"`
}

// InviteResponse contraseña temporal del invitado (se muestra una sola vez).
type InviteResponse struct {
	Message      string       `json:"message"`
	User         UserResponse `json:"user"`
	TempPassword string       `json:"temp_password"`
}

// ToUserResponse mapea la entidad; company permite sustituir la empresa mostrada.
func ToUserResponse(u *entity.User, company entity.Company) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Surnames:   u.Surnames,
		NIF:        u.NIF,
		Role:       u.Role,
		Status:     u.Status,
		IsAutonomo: u.IsAutonomo,
		Address:    u.Address,
		Company:    company,
		Logo:       u.Logo,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
