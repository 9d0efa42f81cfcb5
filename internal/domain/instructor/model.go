package instructor

import (
	"strconv"
	"strings"
	"unicode"
)

// Instructor is a staff member who teaches disciplines.
// Instructor resources are keyed by the user id.
type Instructor struct {
	Usuario         int64  `json:"usuario"`
	UsuarioUsername string `json:"usuario_username"`
	Email           string `json:"email,omitempty"`
	Nombre          string `json:"nombre,omitempty"`
	ApellidoPaterno string `json:"apellido_paterno,omitempty"`
	Especialidad    string `json:"especialidad,omitempty"`
	FechaIngreso    string `json:"fecha_ingreso,omitempty"`
}

// Key returns the identifier used in resource URLs.
func (i Instructor) Key() string {
	return strconv.FormatInt(i.Usuario, 10)
}

// Label is the text shown in select inputs.
func (i Instructor) Label() string {
	if i.Nombre != "" {
		return i.Nombre + " " + i.ApellidoPaterno + " (@" + i.UsuarioUsername + ")"
	}
	return "@" + i.UsuarioUsername
}

// Inicial returns the avatar letter.
func (i Instructor) Inicial() string {
	for _, s := range []string{i.Nombre, i.UsuarioUsername} {
		for _, r := range strings.TrimSpace(s) {
			return string(unicode.ToUpper(r))
		}
	}
	return "?"
}
