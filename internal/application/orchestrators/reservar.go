package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"strconv"

	"gymfront/internal/adapters/email"
	"gymfront/internal/domain/horario"
	"gymfront/internal/domain/reserva"
)

// ReservasAPI defines the backend calls needed by the reservation flows.
type ReservasAPI interface {
	Create(ctx context.Context, in reserva.Input) (reserva.Reserva, error)
	Get(ctx context.Context, key string) (reserva.Reserva, error)
	Patch(ctx context.Context, key string, fields any) (reserva.Reserva, error)
}

// ReservarInput carries the schedule being booked and who books it.
type ReservarInput struct {
	Horario horario.Horario
	Email   string
	Nombre  string
}

// ReservarDeps holds dependencies for Reservar.
type ReservarDeps struct {
	Reservas ReservasAPI
	Sender   email.Sender // optional
}

var receiptTmpl = template.Must(template.New("receipt").Parse(
	`<p>Hola {{.Nombre}},</p>
<p>Tu reserva para <strong>{{.Disciplina}}</strong> el {{.Dia}} de {{.HoraIni}} a {{.HoraFin}} quedó registrada con estado {{.Estado}}.</p>
<p>Si no puedes asistir, cancélala desde "Mis reservas".</p>`))

// ExecuteReservar books a schedule for the calling client.
// PRE: Horario has capacity as last seen
// POST: The reservation exists; a receipt is attempted but its failure never fails the booking
func ExecuteReservar(ctx context.Context, input ReservarInput, deps ReservarDeps) (reserva.Reserva, error) {
	res, err := deps.Reservas.Create(ctx, reserva.Input{Horario: input.Horario.ID})
	if err != nil {
		return reserva.Reserva{}, err
	}
	slog.Info("reserva_created", "reserva_id", res.ID, "horario_id", input.Horario.ID)

	if deps.Sender != nil && input.Email != "" {
		sendReceipt(ctx, deps.Sender, input, res)
	}
	return res, nil
}

func sendReceipt(ctx context.Context, sender email.Sender, input ReservarInput, res reserva.Reserva) {
	estado := res.Estado
	if estado == "" {
		estado = reserva.EstadoPendiente
	}
	var buf bytes.Buffer
	err := receiptTmpl.Execute(&buf, map[string]string{
		"Nombre":     input.Nombre,
		"Disciplina": input.Horario.DisciplinaNombre,
		"Dia":        input.Horario.Dia,
		"HoraIni":    horario.ShortTime(input.Horario.HoraIni),
		"HoraFin":    horario.ShortTime(input.Horario.HoraFin),
		"Estado":     estado,
	})
	if err != nil {
		slog.Error("receipt_render_failed", "reserva_id", res.ID, "error", err)
		return
	}
	_, err = sender.Send(ctx, email.SendRequest{
		To:      []string{input.Email},
		Subject: "Reserva registrada",
		HTML:    buf.String(),
		Tags:    map[string]string{"tipo": "reserva", "reserva_id": strconv.FormatInt(res.ID, 10)},
	})
	if err != nil {
		slog.Warn("receipt_send_failed", "reserva_id", res.ID, "error", err)
	}
}

// CancelarReservaInput identifies the reservation to cancel.
type CancelarReservaInput struct {
	ReservaID string
	ClienteID int64 // when non-zero the reservation must belong to this client
}

// ErrNotOwner is returned when a client acts on a record that is not theirs.
var ErrNotOwner = errors.New("el registro no pertenece a tu cuenta")

// ExecuteCancelarReserva sets a reservation's status to Cancelada.
// PRE: ReservaID identifies an existing reservation
// POST: Only the status changes; the reservation is never deleted
// INVARIANT: An already cancelled reservation is refused without a backend write
func ExecuteCancelarReserva(ctx context.Context, input CancelarReservaInput, deps ReservarDeps) (reserva.Reserva, error) {
	current, err := deps.Reservas.Get(ctx, input.ReservaID)
	if err != nil {
		return reserva.Reserva{}, err
	}
	if input.ClienteID != 0 && current.Cliente != input.ClienteID {
		slog.Warn("scope_leak", "resource", "reserva", "reserva_id", current.ID, "cliente_id", input.ClienteID)
		return reserva.Reserva{}, ErrNotOwner
	}
	if current.Cancelada() {
		return current, reserva.ErrYaCancelada
	}
	updated, err := deps.Reservas.Patch(ctx, input.ReservaID, reserva.CancelPatch())
	if err != nil {
		return reserva.Reserva{}, err
	}
	slog.Info("reserva_cancelled", "reserva_id", current.ID)
	return updated, nil
}
