package validation

import (
	"testing"

	"gymfront/internal/domain/antecedente"
	"gymfront/internal/domain/cliente"
	"gymfront/internal/domain/disciplina"
	"gymfront/internal/domain/horario"
	"gymfront/internal/domain/promocion"
	"gymfront/internal/domain/suscripcion"
	"gymfront/internal/domain/usuario"
)

// TestCheck_FieldNames verifies messages are keyed by JSON names.
func TestCheck_FieldNames(t *testing.T) {
	errs := Check(cliente.Input{})
	for _, field := range []string{"usuario", "fecha_ini_mem", "fecha_fin_mem"} {
		if !errs.Has(field) {
			t.Errorf("expected error for %q, got %v", field, errs)
		}
	}
	if errs.Has("suscripcion_actual") {
		t.Errorf("optional suscripcion_actual should not fail: %v", errs)
	}
}

// TestCheck_Rules covers the per-entity constraints.
func TestCheck_Rules(t *testing.T) {
	one := int64(1)
	tests := []struct {
		name      string
		in        any
		wantField string
	}{
		{"discipline capacity must be positive", disciplina.Input{Nombre: "Yoga", Cupo: 0}, "cupo"},
		{"subscription price minimum", suscripcion.Input{Nombre: "Mensual", Precio: 0}, "precio"},
		{"promotion discount above 100", promocion.Input{Nombre: "P", Tipo: "T", Descripcion: "d", Descuento: 120, FechaIni: "2026-01-01", FechaFin: "2026-02-01"}, "descuento"},
		{"promotion bad date", promocion.Input{Nombre: "P", Tipo: "T", Descripcion: "d", FechaIni: "01/02/2026", FechaFin: "2026-02-01"}, "fecha_ini"},
		{"promotion end before start", promocion.Input{Nombre: "P", Tipo: "T", Descripcion: "d", FechaIni: "2026-03-01", FechaFin: "2026-02-01"}, "fecha_fin"},
		{"schedule bad day", horario.Input{Disciplina: 1, Sala: 1, Instructor: 1, Dia: "Funday", HoraIni: "08:00", HoraFin: "09:00"}, "dia"},
		{"schedule end before start", horario.Input{Disciplina: 1, Sala: 1, Instructor: 1, Dia: horario.Lunes, HoraIni: "10:00", HoraFin: "09:00"}, "hora_fin"},
		{"client end before start", cliente.Input{Usuario: 1, SuscripcionActual: &one, FechaIniMem: "2026-02-01", FechaFinMem: "2026-01-01"}, "fecha_fin_mem"},
		{"user bad role", usuario.Input{Username: "ana", Email: "ana@gym.test", Nombre: "Ana", Rol: "Root"}, "rol"},
		{"user bad email", usuario.Input{Username: "ana", Email: "ana", Nombre: "Ana", Rol: "Cliente"}, "email"},
		{"antecedent missing date", antecedente.Input{Cliente: 1, Nutricionista: 1}, "fecha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Check(tt.in)
			if !errs.Has(tt.wantField) {
				t.Errorf("Check() = %v, want error on %q", errs, tt.wantField)
			}
		})
	}
}

// TestCheck_Valid verifies valid payloads produce no errors.
func TestCheck_Valid(t *testing.T) {
	valid := []any{
		disciplina.Input{Nombre: "Yoga", Cupo: 10},
		suscripcion.Input{Nombre: "Mensual", Precio: 0.01},
		promocion.Input{Nombre: "P", Tipo: "T", Descripcion: "d", Descuento: 100, FechaIni: "2026-01-01", FechaFin: "2026-01-01"},
		horario.Input{Disciplina: 1, Sala: 1, Instructor: 1, Dia: horario.Miercoles, HoraIni: "08:00", HoraFin: "09:00:00", Cupo: 20},
		usuario.Input{Username: "ana", Email: "ana@gym.test", Nombre: "Ana", Rol: "Cliente"},
	}
	for _, v := range valid {
		if errs := Check(v); errs != nil {
			t.Errorf("Check(%T) = %v, want nil", v, errs)
		}
	}
}

// TestFieldErrors_Merge verifies duplicates are not repeated.
func TestFieldErrors_Merge(t *testing.T) {
	a := FieldErrors{"nombre": {"Este campo es obligatorio."}}
	a.Merge(FieldErrors{"nombre": {"Este campo es obligatorio."}, "cupo": {"Debe ser mayor que 0."}})
	if len(a["nombre"]) != 1 || len(a["cupo"]) != 1 {
		t.Errorf("Merge result = %v", a)
	}
}
