package suscripcion

import (
	"strconv"

	"gymfront/internal/domain/money"
)

// Suscripcion is a membership plan offered for purchase.
type Suscripcion struct {
	ID          int64        `json:"id"`
	Nombre      string       `json:"nombre"`
	Tipo        string       `json:"tipo,omitempty"`
	Descripcion string       `json:"descripcion,omitempty"`
	Precio      money.Amount `json:"precio"`
}

// Key returns the identifier used in resource URLs.
func (s Suscripcion) Key() string {
	return strconv.FormatInt(s.ID, 10)
}

// Label is the text shown in select inputs.
func (s Suscripcion) Label() string {
	return s.Nombre + " (" + s.Precio.Display() + ")"
}

// PorNombre returns the id of the plan with the given name.
// Client records only carry the plan name, so edits resolve the id this way.
func PorNombre(list []Suscripcion, nombre string) (int64, bool) {
	if nombre == "" {
		return 0, false
	}
	for _, s := range list {
		if s.Nombre == nombre {
			return s.ID, true
		}
	}
	return 0, false
}

// Input is the create/update payload for /suscripciones/.
type Input struct {
	Nombre      string  `json:"nombre" validate:"required,max=100"`
	Tipo        string  `json:"tipo,omitempty" validate:"max=50"`
	Descripcion string  `json:"descripcion,omitempty"`
	Precio      float64 `json:"precio" validate:"gte=0.01"`
}

// DeCliente is one entry of /suscripciones-clientes/mis-suscripciones.
type DeCliente struct {
	ID            int64       `json:"id"`
	Suscripcion   Suscripcion `json:"suscripcion"`
	EstadoPago    bool        `json:"estado_pago"`
	FechaInicio   string      `json:"fecha_inicio"`
	FechaFin      string      `json:"fecha_fin"`
	DiasRestantes int         `json:"dias_restantes"`
}

// Key returns the identifier used in resource URLs.
func (d DeCliente) Key() string {
	return strconv.FormatInt(d.ID, 10)
}

// EstadoPagoLabel renders the payment status.
func (d DeCliente) EstadoPagoLabel() string {
	if d.EstadoPago {
		return "Pagada"
	}
	return "Pendiente"
}

// Pagable reports whether the pay action is offered.
func (d DeCliente) Pagable() bool {
	return !d.EstadoPago
}
