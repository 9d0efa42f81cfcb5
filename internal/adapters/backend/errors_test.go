package backend

import (
	"errors"
	"net/http"
	"reflect"
	"testing"
)

// TestNormalize covers the backend error shapes.
func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   Kind
		wantMsg    string
		wantFields map[string][]string
	}{
		{
			name:       "field errors",
			status:     400,
			body:       `{"fecha_ini": ["Invalid date"]}`,
			wantKind:   KindValidation,
			wantMsg:    "Invalid date",
			wantFields: map[string][]string{"fecha_ini": {"Invalid date"}},
		},
		{
			name:       "detail",
			status:     400,
			body:       `{"detail": "No hay cupo disponible."}`,
			wantKind:   KindGeneric,
			wantMsg:    "No hay cupo disponible.",
			wantFields: map[string][]string{},
		},
		{
			name:       "non field errors",
			status:     400,
			body:       `{"non_field_errors": ["Ya tienes una reserva.", "Otra."]}`,
			wantKind:   KindGeneric,
			wantMsg:    "Ya tienes una reserva. Otra.",
			wantFields: map[string][]string{},
		},
		{
			name:       "first key fallback keeps payload order",
			status:     400,
			body:       `{"zeta": "primero", "alfa": ["segundo"]}`,
			wantKind:   KindValidation,
			wantMsg:    "primero",
			wantFields: map[string][]string{"zeta": {"primero"}, "alfa": {"segundo"}},
		},
		{
			name:       "plain string payload",
			status:     500,
			body:       `"boom"`,
			wantKind:   KindGeneric,
			wantMsg:    "boom",
			wantFields: map[string][]string{},
		},
		{
			name:       "html body falls back",
			status:     502,
			body:       `<html>Bad gateway</html>`,
			wantKind:   KindGeneric,
			wantMsg:    MsgGeneric,
			wantFields: map[string][]string{},
		},
		{
			name:       "unauthorized",
			status:     401,
			body:       ``,
			wantKind:   KindUnauthorized,
			wantMsg:    MsgUnauthorized,
			wantFields: map[string][]string{},
		},
		{
			name:       "not found detail",
			status:     404,
			body:       `{"detail":"No encontrado."}`,
			wantKind:   KindNotFound,
			wantMsg:    "No encontrado.",
			wantFields: map[string][]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := normalize(tt.status, []byte(tt.body))
			if e.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", e.Kind, tt.wantKind)
			}
			if e.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", e.Message, tt.wantMsg)
			}
			if !reflect.DeepEqual(e.Fields, tt.wantFields) {
				t.Errorf("Fields = %v, want %v", e.Fields, tt.wantFields)
			}
			if e.Status != tt.status {
				t.Errorf("Status = %d, want %d", e.Status, tt.status)
			}
		})
	}
}

// TestAPIError_Primary verifies the reservation error extraction order.
func TestAPIError_Primary(t *testing.T) {
	e := normalize(http.StatusBadRequest, []byte(`{"cliente": ["x"], "horario": ["Sin cupo."]}`))
	if got := e.Primary("horario"); got != "Sin cupo." {
		t.Errorf("Primary(horario) = %q", got)
	}
	d := normalize(http.StatusBadRequest, []byte(`{"detail": "Detalle"}`))
	if got := d.Primary("horario"); got != "Detalle" {
		t.Errorf("Primary falls back to detail, got %q", got)
	}
}

// TestTransportError verifies the wrapped cause is reachable.
func TestTransportError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	e := transportError(cause)
	if !errors.Is(e, cause) {
		t.Error("transport error should wrap its cause")
	}
	if e.Message == "" || e.Kind != KindTransport {
		t.Errorf("e = %+v", e)
	}
}

// TestFlatten verifies nested payloads become readable messages.
func TestFlatten(t *testing.T) {
	got := flatten(map[string]any{"b": []any{"dos"}, "a": "uno"})
	want := []string{"a: uno", "b: dos"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("flatten = %v, want %v", got, want)
	}
}
