package reserva_test

import (
	"testing"

	"gymfront/internal/domain/reserva"
)

// TestReserva_CanCancel verifies the cancel action disappears once cancelled.
func TestReserva_CanCancel(t *testing.T) {
	tests := []struct {
		estado string
		want   bool
	}{
		{reserva.EstadoPendiente, true},
		{reserva.EstadoConfirmada, true},
		{reserva.EstadoCancelada, false},
	}
	for _, tt := range tests {
		r := reserva.Reserva{ID: 1, Estado: tt.estado}
		if got := r.CanCancel(); got != tt.want {
			t.Errorf("CanCancel(%s) = %v, want %v", tt.estado, got, tt.want)
		}
	}
}

// TestCancelPatch verifies cancellation only touches the status.
func TestCancelPatch(t *testing.T) {
	p := reserva.CancelPatch()
	if len(p) != 1 || p["estado"] != reserva.EstadoCancelada {
		t.Errorf("CancelPatch() = %v, want only estado=Cancelada", p)
	}
}
