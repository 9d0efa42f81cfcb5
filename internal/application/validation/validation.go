// Package validation checks form payloads before they are sent to the backend.
// Messages are keyed by the JSON field name so they line up with form fields
// and with the backend's own field-keyed errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"gymfront/internal/domain/cliente"
	"gymfront/internal/domain/horario"
	"gymfront/internal/domain/promocion"
	"gymfront/internal/domain/role"
)

// Messages for checks made before a payload reaches the validator.
const (
	MsgRequired = "Este campo es obligatorio."
	MsgNumber   = "Ingresa un número válido."
	MsgInteger  = "Ingresa un número entero."
)

// FieldErrors maps a JSON field name to its messages.
type FieldErrors map[string][]string

// Add appends a message to field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Has reports whether field has at least one message.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Merge adds every message of other that is not already present for its field.
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		for _, m := range msgs {
			if !contains(fe[field], m) {
				fe.Add(field, m)
			}
		}
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "fecha", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.DateOnly, fl.Field().String())
		return err == nil
	})
	mustRegister(v, "hora", func(fl validator.FieldLevel) bool {
		_, ok := horario.ParseHora(fl.Field().String())
		return ok
	})
	mustRegister(v, "dia", func(fl validator.FieldLevel) bool {
		return horario.ValidDia(fl.Field().String())
	})
	mustRegister(v, "rol", func(fl validator.FieldLevel) bool {
		_, err := role.Parse(fl.Field().String())
		return err == nil
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(cliente.Input)
		if !in.FechasOrdenadas() {
			sl.ReportError(in.FechaFinMem, "fecha_fin_mem", "FechaFinMem", "fechaorden", "")
		}
	}, cliente.Input{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(horario.Input)
		if !in.HoraFinAfterIni() {
			sl.ReportError(in.HoraFin, "hora_fin", "HoraFin", "horaorden", "")
		}
	}, horario.Input{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(promocion.Input)
		ini, err1 := time.Parse(time.DateOnly, in.FechaIni)
		fin, err2 := time.Parse(time.DateOnly, in.FechaFin)
		if err1 == nil && err2 == nil && fin.Before(ini) {
			sl.ReportError(in.FechaFin, "fecha_fin", "FechaFin", "fechaorden", "")
		}
	}, promocion.Input{})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Check validates a payload struct.
// PRE: v is a struct or pointer to struct with validate tags
// POST: Returns nil when valid; otherwise every failing field has at least one message
func Check(v any) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return FieldErrors{"": {err.Error()}}
	}
	out := FieldErrors{}
	for _, fe := range ve {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

// message renders a Spanish message for a failed rule.
func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return "Ingresa un correo válido."
	case "min":
		if isString {
			return fmt.Sprintf("Debe tener al menos %s caracteres.", fe.Param())
		}
		return fmt.Sprintf("Debe ser al menos %s.", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("No puede superar los %s caracteres.", fe.Param())
		}
		return fmt.Sprintf("No puede ser mayor que %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Debe ser mayor que %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Debe ser mayor o igual a %s.", fe.Param())
	case "lt":
		return fmt.Sprintf("Debe ser menor que %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("No puede ser mayor que %s.", fe.Param())
	case "oneof":
		return "Valor no permitido."
	case "fecha":
		return "La fecha no es válida."
	case "hora":
		return "La hora no es válida (HH:MM)."
	case "dia":
		return "Día no válido."
	case "rol":
		return "Rol no válido."
	case "fechaorden":
		return "La fecha de fin no puede ser anterior a la de inicio."
	case "horaorden":
		return "La hora de fin debe ser posterior a la de inicio."
	}
	return "Valor no válido."
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
