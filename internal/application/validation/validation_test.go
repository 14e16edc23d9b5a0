package validation_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/application/validation"
	"github.com/jhoicas/albaranes-api/internal/domain"
)

func TestStruct_NombresJSON(t *testing.T) {
	err := validation.Struct(dto.CreateClientRequest{Email: "no-es-email"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	var fe *domain.FieldsError
	require.ErrorAs(t, err, &fe)
	fields := map[string]string{}
	for _, f := range fe.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "es obligatorio", fields["name"])
	assert.Equal(t, "debe ser un email válido", fields["email"])
	assert.Contains(t, fields, "cif")
}

func TestStruct_HorasNegativas(t *testing.T) {
	in := dto.CreateDeliveryNoteRequest{
		ProjectID:   "7b0d8c4e-6a5f-4f6c-9d3a-2f1e0b9c8a71",
		WorkEntries: []dto.WorkEntryRequest{{Person: "Ana", Hours: decimal.NewFromInt(-1)}},
	}
	err := validation.Struct(in)

	var fe *domain.FieldsError
	require.ErrorAs(t, err, &fe)
	require.Len(t, fe.Fields, 1)
	assert.Equal(t, "work_entries[0].hours", fe.Fields[0].Field)
}

func TestStruct_Valido(t *testing.T) {
	in := dto.CreateDeliveryNoteRequest{
		ProjectID:       "7b0d8c4e-6a5f-4f6c-9d3a-2f1e0b9c8a71",
		WorkEntries:     []dto.WorkEntryRequest{{Person: "Ana", Hours: decimal.RequireFromString("7.5")}},
		MaterialEntries: []dto.MaterialEntryRequest{{Name: "Cemento", Quantity: decimal.NewFromInt(3)}},
	}
	assert.NoError(t, validation.Struct(in))
}
