package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkEntryRequest horas de una persona.
type WorkEntryRequest struct {
	Person string          `json:"person" validate:"required,max=200"`
	Hours  decimal.Decimal `json:"hours" validate:"gte=0"`
}

// MaterialEntryRequest material empleado.
type MaterialEntryRequest struct {
	Name     string          `json:"name" validate:"required,max=200"`
	Quantity decimal.Decimal `json:"quantity" validate:"gte=0"`
}

// CreateDeliveryNoteRequest entrada para crear un albarán.
type CreateDeliveryNoteRequest struct {
	ProjectID       string                 `json:"project_id" validate:"required,uuid"`
	Description     string                 `json:"description" validate:"omitempty,max=5000"`
	WorkEntries     []WorkEntryRequest     `json:"work_entries" validate:"omitempty,dive"`
	MaterialEntries []MaterialEntryRequest `json:"material_entries" validate:"omitempty,dive"`
	Date            *time.Time             `json:"date"`
}

// UpdateDeliveryNoteRequest actualización parcial (solo albaranes sin firmar).
// Las listas, si vienen, reemplazan a las existentes.
type UpdateDeliveryNoteRequest struct {
	Description     *string                `json:"description" validate:"omitempty,max=5000"`
	WorkEntries     []WorkEntryRequest     `json:"work_entries" validate:"omitempty,dive"`
	MaterialEntries []MaterialEntryRequest `json:"material_entries" validate:"omitempty,dive"`
	Date            *time.Time             `json:"date"`
}

// WorkEntryResponse línea de horas.
type WorkEntryResponse struct {
	Person string          `json:"person"`
	Hours  decimal.Decimal `json:"hours"`
}

// MaterialEntryResponse línea de material.
type MaterialEntryResponse struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
}

// DeliveryNoteResponse salida de un albarán.
type DeliveryNoteResponse struct {
	ID              string                  `json:"id"`
	ProjectID       string                  `json:"project_id"`
	Project         *ProjectSummary         `json:"project,omitempty"`
	Description     string                  `json:"description"`
	WorkEntries     []WorkEntryResponse     `json:"work_entries"`
	MaterialEntries []MaterialEntryResponse `json:"material_entries"`
	Date            time.Time               `json:"date"`
	Signature       string                  `json:"signature"`
	Signed          bool                    `json:"signed"`
	PDFURL          string                  `json:"pdf_url"`
	CreatedBy       *UserSummary            `json:"created_by,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// DeliveryNoteListResponse lista de albaranes.
type DeliveryNoteListResponse struct {
	Items []DeliveryNoteResponse `json:"items"`
}

// PDFFile PDF generado listo para descargar.
type PDFFile struct {
	Filename string
	Content  []byte
	URL      string
}
