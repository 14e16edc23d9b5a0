package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity datos del usuario que viajan en el token.
type Identity struct {
	UserID    string
	Role      string
	InvitedBy string // vacío salvo invitados
	Recover   bool   // true solo en tokens de recuperación de contraseña
}

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// La empresa (CIF) no viaja en el token: se resuelve en cada petición.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Role      string `json:"role"` // "user" | "admin" | "guest"
	InvitedBy string `json:"invited_by,omitempty"`
	Recover   bool   `json:"recover,omitempty"`
}

// Generate genera un token de sesión firmado (HS256).
func Generate(secret, issuer string, id Identity, expMinutes int) (string, error) {
	id.Recover = false
	return sign(secret, issuer, id, expMinutes)
}

// GenerateRecovery genera un token de recuperación de contraseña (recover=true).
func GenerateRecovery(secret, issuer string, id Identity, expMinutes int) (string, error) {
	id.Recover = true
	return sign(secret, issuer, id, expMinutes)
}

func sign(secret, issuer string, id Identity, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    id.UserID,
		Role:      id.Role,
		InvitedBy: id.InvitedBy,
		Recover:   id.Recover,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la identidad.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return Identity{}, fmt.Errorf("claims inválidos")
	}
	return Identity{
		UserID:    claims.UserID,
		Role:      claims.Role,
		InvitedBy: claims.InvitedBy,
		Recover:   claims.Recover,
	}, nil
}
