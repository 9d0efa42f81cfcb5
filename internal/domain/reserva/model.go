package reserva

import (
	"errors"
	"strconv"
)

// Estado values.
const (
	EstadoPendiente  = "Pendiente"
	EstadoConfirmada = "Confirmada"
	EstadoCancelada  = "Cancelada"
)

// Estados contains all valid status values.
var Estados = []string{EstadoPendiente, EstadoConfirmada, EstadoCancelada}

// ErrYaCancelada is returned when cancelling a reservation that is already cancelled.
var ErrYaCancelada = errors.New("la reserva ya está cancelada")

// Reserva is a client's booking against a schedule.
type Reserva struct {
	ID                      int64  `json:"id"`
	Cliente                 int64  `json:"cliente"`
	Horario                 int64  `json:"horario"`
	Fecha                   string `json:"fecha"`
	Estado                  string `json:"estado"`
	ClienteUsername         string `json:"cliente_username,omitempty"`
	HorarioDisciplinaNombre string `json:"horario_disciplina_nombre,omitempty"`
	HorarioDia              string `json:"horario_dia,omitempty"`
	HorarioHoraIni          string `json:"horario_hora_ini,omitempty"`
	HorarioSalaNombre       string `json:"horario_sala_nombre,omitempty"`
	HorarioCupo             *int   `json:"horario_cupo,omitempty"`
}

// Key returns the identifier used in resource URLs.
func (r Reserva) Key() string {
	return strconv.FormatInt(r.ID, 10)
}

// Cancelada reports whether the reservation has been cancelled.
func (r Reserva) Cancelada() bool {
	return r.Estado == EstadoCancelada
}

// CanCancel reports whether the cancel action is offered for this reservation.
// INVARIANT: A cancelled reservation never offers cancel again
func (r Reserva) CanCancel() bool {
	return !r.Cancelada()
}

// CancelPatch is the partial update that cancels a reservation.
// Cancellation changes the status only; the reservation is never deleted.
func CancelPatch() map[string]string {
	return map[string]string{"estado": EstadoCancelada}
}

// Input is the create payload for /reservas/.
// Cliente is omitted when the backend assigns it from the caller.
type Input struct {
	Cliente *int64 `json:"cliente,omitempty" validate:"omitempty,gt=0"`
	Horario int64  `json:"horario" validate:"required,gt=0"`
}
