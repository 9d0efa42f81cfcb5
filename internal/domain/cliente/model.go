package cliente

import (
	"strconv"
	"time"
)

// Cliente is a gym member, linked 1:1 to a user account.
// The backend keys client resources by the user id, not the client id.
type Cliente struct {
	ID                      int64  `json:"id"`
	Usuario                 int64  `json:"usuario"`
	UsuarioUsername         string `json:"usuario_username"`
	Email                   string `json:"email"`
	Nombre                  string `json:"nombre,omitempty"`
	ApellidoPaterno         string `json:"apellido_paterno,omitempty"`
	SuscripcionActual       *int64 `json:"suscripcion_actual,omitempty"`
	SuscripcionActualNombre string `json:"suscripcion_actual_nombre"`
	FechaIniMem             string `json:"fecha_ini_mem"`
	FechaFinMem             string `json:"fecha_fin_mem"`
}

// Key returns the identifier used in resource URLs (the user id).
func (c Cliente) Key() string {
	return strconv.FormatInt(c.Usuario, 10)
}

// Label is the text shown in select inputs.
func (c Cliente) Label() string {
	if c.Nombre != "" {
		return c.UsuarioUsername + " (" + c.Nombre + " " + c.ApellidoPaterno + ")"
	}
	return c.UsuarioUsername
}

// MembresiaVigente reports whether now falls inside the membership dates.
func (c Cliente) MembresiaVigente(now time.Time) bool {
	ini, err1 := time.Parse(time.DateOnly, c.FechaIniMem)
	fin, err2 := time.Parse(time.DateOnly, c.FechaFinMem)
	if err1 != nil || err2 != nil {
		return false
	}
	day := now.Format(time.DateOnly)
	return day >= ini.Format(time.DateOnly) && day <= fin.Format(time.DateOnly)
}

// Input is the create/update payload for /clientes/.
type Input struct {
	Usuario           int64  `json:"usuario" validate:"required,gt=0"`
	SuscripcionActual *int64 `json:"suscripcion_actual,omitempty" validate:"omitempty,gt=0"`
	FechaIniMem       string `json:"fecha_ini_mem" validate:"required,fecha"`
	FechaFinMem       string `json:"fecha_fin_mem" validate:"required,fecha"`
}

// FechasOrdenadas reports whether the membership ends on or after it starts.
// Unparseable dates report true; the format check is reported separately.
func (in Input) FechasOrdenadas() bool {
	ini, err1 := time.Parse(time.DateOnly, in.FechaIniMem)
	fin, err2 := time.Parse(time.DateOnly, in.FechaFinMem)
	if err1 != nil || err2 != nil {
		return true
	}
	return !fin.Before(ini)
}
