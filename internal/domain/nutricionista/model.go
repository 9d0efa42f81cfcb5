package nutricionista

import (
	"strconv"
	"strings"
	"unicode"
)

// Nutricionista is a staff member who records clinical antecedents.
// Nutritionist resources are keyed by the user id.
type Nutricionista struct {
	Usuario         int64  `json:"usuario"`
	UsuarioUsername string `json:"usuario_username"`
	Email           string `json:"email,omitempty"`
	Nombre          string `json:"nombre,omitempty"`
	ApellidoPaterno string `json:"apellido_paterno,omitempty"`
	HorarioAtencion string `json:"horario_atencion,omitempty"`
	FechaTitulacion string `json:"fecha_titulacion,omitempty"`
}

// Key returns the identifier used in resource URLs.
func (n Nutricionista) Key() string {
	return strconv.FormatInt(n.Usuario, 10)
}

// Label is the text shown in select inputs.
func (n Nutricionista) Label() string {
	if n.Nombre != "" {
		return n.Nombre + " " + n.ApellidoPaterno + " (@" + n.UsuarioUsername + ")"
	}
	return "@" + n.UsuarioUsername
}

// Inicial returns the avatar letter.
func (n Nutricionista) Inicial() string {
	for _, s := range []string{n.Nombre, n.UsuarioUsername} {
		s = strings.TrimSpace(s)
		for _, r := range s {
			return string(unicode.ToUpper(r))
		}
	}
	return "?"
}
