package usuario

import (
	"strconv"
	"strings"
)

// Sexo values accepted by the backend.
const (
	SexoMasculino = "M"
	SexoFemenino  = "F"
)

// Usuario is a platform account as returned by /usuarios/.
type Usuario struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Nombre          string `json:"nombre"`
	ApellidoPaterno string `json:"apellido_paterno"`
	ApellidoMaterno string `json:"apellido_materno"`
	Sexo            string `json:"sexo"`
	Direccion       string `json:"direccion"`
	FechaNacimiento string `json:"fecha_nacimiento"`
	Rol             string `json:"rol"`
}

// Key returns the identifier used in resource URLs.
func (u Usuario) Key() string {
	return strconv.FormatInt(u.ID, 10)
}

// NombreCompleto joins the non-empty name parts.
func (u Usuario) NombreCompleto() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.Nombre, u.ApellidoPaterno, u.ApellidoMaterno} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return u.Username
	}
	return strings.Join(parts, " ")
}

// Label is the text shown in select inputs.
func (u Usuario) Label() string {
	return u.Username + " (" + u.NombreCompleto() + ")"
}

// Input is the create/update payload for /usuarios/.
// Password is only sent when set.
type Input struct {
	Username        string `json:"username" validate:"required,max=150"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password,omitempty" validate:"omitempty,min=8"`
	Nombre          string `json:"nombre" validate:"required,max=100"`
	ApellidoPaterno string `json:"apellido_paterno" validate:"max=100"`
	ApellidoMaterno string `json:"apellido_materno" validate:"max=100"`
	Sexo            string `json:"sexo,omitempty" validate:"omitempty,oneof=M F"`
	Direccion       string `json:"direccion,omitempty" validate:"max=255"`
	FechaNacimiento string `json:"fecha_nacimiento,omitempty" validate:"omitempty,fecha"`
	Rol             string `json:"rol" validate:"required,rol"`
}
