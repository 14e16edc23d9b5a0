package entity

import "time"

// Roles válidos para User.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleGuest = "guest"
)

// Estados de verificación del email.
const (
	StatusUnverified = 0
	StatusVerified   = 1
)

// Company datos de la empresa a la que pertenece el usuario.
// CIF es la etiqueta que comparte visibilidad entre usuarios de la misma empresa.
type Company struct {
	Name     string `json:"name"`
	CIF      string `json:"cif"`
	Street   string `json:"street"`
	Number   *int   `json:"number"`
	Postal   *int   `json:"postal"`
	City     string `json:"city"`
	Province string `json:"province"`
}

// User representa un usuario del sistema.
type User struct {
	ID                   string
	Email                string
	PasswordHash         string // bcrypt hash
	Status               int    // 0 pendiente de verificación, 1 verificado
	Role                 string // user, admin, guest
	IsAutonomo           bool
	VerificationCode     string
	Attempts             int
	Name                 string
	Surnames             string
	NIF                  string
	Address              Address
	Company              Company
	CompanyOwner         string // usuario que invitó (solo guest)
	Logo                 string
	PasswordRecoveryCode string
	DeletedAt            *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsGuest indica si el usuario fue creado por invitación.
func (u *User) IsGuest() bool { return u.Role == RoleGuest }

// DisplayName nombre para mostrar: nombre si existe, si no el email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
