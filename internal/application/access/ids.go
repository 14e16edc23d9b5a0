package access

import (
	"github.com/google/uuid"

	"github.com/jhoicas/albaranes-api/internal/domain"
)

// ValidateID rechaza ids mal formados antes de consultar el store.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidID
	}
	return nil
}
