package disciplina

import "strconv"

// Disciplina is a class or activity offering.
type Disciplina struct {
	ID                 int64  `json:"id"`
	Nombre             string `json:"nombre"`
	Grupo              string `json:"grupo,omitempty"`
	Descripcion        string `json:"descripcion,omitempty"`
	Cupo               int    `json:"cupo"`
	Sala               *int64 `json:"sala"`
	SalaNombre         string `json:"sala_nombre,omitempty"`
	Instructor         *int64 `json:"instructor"`
	InstructorUsername string `json:"instructor_username,omitempty"`
}

// Key returns the identifier used in resource URLs.
func (d Disciplina) Key() string {
	return strconv.FormatInt(d.ID, 10)
}

// Label is the text shown in select inputs.
func (d Disciplina) Label() string {
	if d.Grupo != "" {
		return d.Nombre + " · " + d.Grupo
	}
	return d.Nombre
}

// Input is the create/update payload for /disciplinas/.
type Input struct {
	Nombre      string `json:"nombre" validate:"required,max=100"`
	Grupo       string `json:"grupo,omitempty" validate:"max=100"`
	Descripcion string `json:"descripcion,omitempty"`
	Cupo        int    `json:"cupo" validate:"gt=0"`
	Sala        *int64 `json:"sala,omitempty" validate:"omitempty,gt=0"`
	Instructor  *int64 `json:"instructor,omitempty" validate:"omitempty,gt=0"`
}

// Asignadas is the response of the instructor-scoped /disciplinas/mis-disciplinas/.
type Asignadas struct {
	Count       int          `json:"count"`
	Instructor  string       `json:"instructor"`
	Disciplinas []Disciplina `json:"disciplinas"`
}

// IDs returns the discipline ids, used to scope schedule queries.
func (a Asignadas) IDs() map[int64]bool {
	ids := make(map[int64]bool, len(a.Disciplinas))
	for _, d := range a.Disciplinas {
		ids[d.ID] = true
	}
	return ids
}
