package repository

// RecordState filtra registros por su estado de borrado lógico.
type RecordState int

const (
	// StateActive registros sin deleted_at.
	StateActive RecordState = iota
	// StateArchived registros archivados (deleted_at no nulo).
	StateArchived
	// StateAny ignora el estado de borrado (usado por destroy).
	StateAny
)

// Includes indica si un registro con el estado dado pasa el filtro.
func (s RecordState) Includes(archived bool) bool {
	switch s {
	case StateActive:
		return !archived
	case StateArchived:
		return archived
	default:
		return true
	}
}
