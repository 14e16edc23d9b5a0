// Package validation valida DTOs con go-playground/validator usando los nombres JSON.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/albaranes-api/internal/domain"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// decimal.Decimal se valida como float (gte=0 en horas y cantidades)
		v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
			d, ok := f.Interface().(decimal.Decimal)
			if !ok {
				return nil
			}
			fl, _ := d.Float64()
			return fl
		}, decimal.Decimal{})
		validate = v
	})
	return validate
}

// Struct valida s y devuelve *domain.FieldsError con un detalle por campo.
func Struct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &domain.FieldsError{Fields: make([]domain.FieldViolation, 0, len(verrs))}
	for _, e := range verrs {
		out.Fields = append(out.Fields, domain.FieldViolation{
			Field:   fieldPath(e),
			Message: message(e),
		})
	}
	return out
}

// fieldPath ruta sin el nombre del struct raíz (work_entries[0].person).
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "debe ser un email válido"
	case "min":
		if e.Kind() == reflect.String {
			return "debe tener al menos " + e.Param() + " caracteres"
		}
		return "debe ser al menos " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "debe tener como máximo " + e.Param() + " caracteres"
		}
		return "debe ser como máximo " + e.Param()
	case "len":
		return "debe tener exactamente " + e.Param() + " caracteres"
	case "uuid":
		return "formato de id inválido"
	case "numeric":
		return "debe ser numérico"
	case "gte":
		return "debe ser mayor o igual que " + e.Param()
	case "oneof":
		return "debe ser uno de: " + e.Param()
	default:
		return "valor inválido"
	}
}
