package horario

import (
	"strconv"
	"strings"
	"time"
)

// Day of week values. The backend stores the Spanish names.
const (
	Lunes     = "Lunes"
	Martes    = "Martes"
	Miercoles = "Miércoles"
	Jueves    = "Jueves"
	Viernes   = "Viernes"
	Sabado    = "Sábado"
	Domingo   = "Domingo"
)

// Dias contains all valid day values in week order.
var Dias = []string{Lunes, Martes, Miercoles, Jueves, Viernes, Sabado, Domingo}

// DiaDe returns the day name of t.
func DiaDe(t time.Time) string {
	// time.Sunday is 0; Dias starts on Monday.
	return Dias[(int(t.Weekday())+6)%7]
}

// DefaultCupo is the capacity preset on new schedules.
const DefaultCupo = 20

// Horario is a scheduled occurrence of a discipline.
// Cupo is the remaining capacity, decremented by the backend on reservation.
type Horario struct {
	ID                 int64  `json:"id"`
	Disciplina         int64  `json:"disciplina"`
	DisciplinaNombre   string `json:"disciplina_nombre,omitempty"`
	Sala               int64  `json:"sala"`
	SalaNombre         string `json:"sala_nombre,omitempty"`
	Instructor         int64  `json:"instructor"`
	InstructorUsername string `json:"instructor_username,omitempty"`
	Dia                string `json:"dia"`
	HoraIni            string `json:"hora_ini"`
	HoraFin            string `json:"hora_fin"`
	Cupo               int    `json:"cupo"`
}

// Key returns the identifier used in resource URLs.
func (h Horario) Key() string {
	return strconv.FormatInt(h.ID, 10)
}

// Label is the text shown in select inputs.
func (h Horario) Label() string {
	name := h.DisciplinaNombre
	if name == "" {
		name = "Disciplina " + strconv.FormatInt(h.Disciplina, 10)
	}
	return name + " · " + h.Dia + " " + ShortTime(h.HoraIni) + "-" + ShortTime(h.HoraFin) + " (cupo " + strconv.Itoa(h.Cupo) + ")"
}

// TieneCupo reports whether the schedule still accepts reservations.
func (h Horario) TieneCupo() bool {
	return h.Cupo > 0
}

// ConCupo returns the schedules that still have capacity, preserving order.
// INVARIANT: No returned schedule has Cupo <= 0
func ConCupo(list []Horario) []Horario {
	out := make([]Horario, 0, len(list))
	for _, h := range list {
		if h.TieneCupo() {
			out = append(out, h)
		}
	}
	return out
}

// DeDisciplinas keeps only schedules whose discipline is in ids.
func DeDisciplinas(list []Horario, ids map[int64]bool) []Horario {
	out := make([]Horario, 0, len(list))
	for _, h := range list {
		if ids[h.Disciplina] {
			out = append(out, h)
		}
	}
	return out
}

// ValidDia reports whether d is one of the seven day values.
func ValidDia(d string) bool {
	for _, v := range Dias {
		if v == d {
			return true
		}
	}
	return false
}

// ParseHora parses "HH:MM" or "HH:MM:SS".
func ParseHora(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ShortTime trims a backend time ("08:00:00") to "08:00".
func ShortTime(s string) string {
	if t, ok := ParseHora(s); ok {
		return t.Format("15:04")
	}
	return s
}

// Input is the create/update payload for /horarios/.
type Input struct {
	Disciplina int64  `json:"disciplina" validate:"required,gt=0"`
	Sala       int64  `json:"sala" validate:"required,gt=0"`
	Instructor int64  `json:"instructor" validate:"required,gt=0"`
	Dia        string `json:"dia" validate:"required,dia"`
	HoraIni    string `json:"hora_ini" validate:"required,hora"`
	HoraFin    string `json:"hora_fin" validate:"required,hora"`
	Cupo       int    `json:"cupo" validate:"gte=0"`
}

// HoraFinAfterIni reports whether the end time is after the start time.
// Unparseable times report true; the format check is reported separately.
func (in Input) HoraFinAfterIni() bool {
	ini, ok1 := ParseHora(in.HoraIni)
	fin, ok2 := ParseHora(in.HoraFin)
	if !ok1 || !ok2 {
		return true
	}
	return fin.After(ini)
}
