package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WorkEntry horas trabajadas por una persona.
type WorkEntry struct {
	Person string          `json:"person"`
	Hours  decimal.Decimal `json:"hours"`
}

// MaterialEntry material empleado.
type MaterialEntry struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
}

// DeliveryNote albarán (parte de trabajo) asociado a un proyecto.
// No tiene borrado lógico: se elimina físicamente y solo si no está firmado.
type DeliveryNote struct {
	ID              string
	ProjectID       string
	CreatedBy       string
	Description     string
	WorkEntries     []WorkEntry
	MaterialEntries []MaterialEntry
	Date            time.Time
	Signature       string // URL de la imagen de firma
	PDFURL          string // URL del último PDF generado
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Signed indica si el albarán tiene firma.
func (n *DeliveryNote) Signed() bool {
	return strings.TrimSpace(n.Signature) != ""
}
