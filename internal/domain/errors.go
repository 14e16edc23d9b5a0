package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado o no autorizado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidID          = errors.New("id inválido")
	ErrValidation         = errors.New("validación fallida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrInvalidCredentials = errors.New("credenciales incorrectas")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrMaxAttempts        = errors.New("número máximo de intentos alcanzado")
	ErrInvalidCode        = errors.New("código incorrecto")
)

// VerificationError código de verificación incorrecto con intentos restantes (> 0).
type VerificationError struct {
	Remaining int
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("Código inválido. Quedan %d intentos", e.Remaining)
}

// Unwrap permite errors.Is(err, ErrInvalidCode).
func (e *VerificationError) Unwrap() error { return ErrInvalidCode }

// Variantes con mensaje propio; errors.Is sigue resolviendo a la categoría.
var (
	ErrSignedNoteDelete = fmt.Errorf("no se puede eliminar un albarán firmado: %w", ErrForbidden)
	ErrSignedNoteUpdate = fmt.Errorf("no se puede modificar un albarán firmado: %w", ErrForbidden)
	ErrGuestReadOnly    = fmt.Errorf("los usuarios invitados no pueden modificar datos: %w", ErrForbidden)
	ErrProjectExists    = fmt.Errorf("ya existe un proyecto con ese nombre o código: %w", ErrConflict)
)

// FieldViolation regla incumplida en un campo.
type FieldViolation struct {
	Field   string
	Message string
}

// FieldsError validación fallida con detalle por campo.
type FieldsError struct {
	Fields []FieldViolation
}

func (e *FieldsError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Fields[0].Field, e.Fields[0].Message)
}

// Unwrap permite errors.Is(err, ErrValidation).
func (e *FieldsError) Unwrap() error { return ErrValidation }
