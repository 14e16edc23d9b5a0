package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/pkg/jwt"
)

// Locals keys de la identidad autenticada en Fiber.
const (
	LocalUserID    = "user_id"
	LocalRole      = "role"
	LocalInvitedBy = "invited_by"
)

// AuthMiddleware valida el Bearer Token de sesión y carga la identidad en c.Locals.
// Los tokens de recuperación no sirven como sesión.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, failed := bearerIdentity(c, jwtSecret)
		if failed != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(failed)
		}
		if id.Recover {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token de recuperación no válido como sesión"})
		}
		setIdentity(c, id)
		return c.Next()
	}
}

// RecoveryMiddleware exige un token de recuperación (recover=true).
func RecoveryMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, failed := bearerIdentity(c, jwtSecret)
		if failed != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(failed)
		}
		if !id.Recover {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "se requiere un token de recuperación"})
		}
		setIdentity(c, id)
		return c.Next()
	}
}

// bearerIdentity devuelve la identidad del token o el cuerpo del 401.
func bearerIdentity(c *fiber.Ctx, jwtSecret string) (jwt.Identity, *dto.ErrorResponse) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return jwt.Identity{}, &dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"}
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return jwt.Identity{}, &dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"}
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return jwt.Identity{}, &dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"}
	}
	id, err := jwt.Parse(jwtSecret, tokenString)
	if err != nil || id.UserID == "" {
		return jwt.Identity{}, &dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"}
	}
	return id, nil
}

func setIdentity(c *fiber.Ctx, id jwt.Identity) {
	c.Locals(LocalUserID, id.UserID)
	c.Locals(LocalRole, id.Role)
	c.Locals(LocalInvitedBy, id.InvitedBy)
}

// GetPrincipal principal del token (sin CIF: lo resuelve el caso de uso).
func GetPrincipal(c *fiber.Ctx) policy.Principal {
	return policy.Principal{
		ID:        localString(c, LocalUserID),
		Role:      localString(c, LocalRole),
		InvitedBy: localString(c, LocalInvitedBy),
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}
