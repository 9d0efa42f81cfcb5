package sala

import "strconv"

// Sala is a training room. Rooms are read-only for this application.
type Sala struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	Capacidad   int    `json:"capacidad"`
	Descripcion string `json:"descripcion,omitempty"`
}

// Key returns the identifier used in resource URLs.
func (s Sala) Key() string {
	return strconv.FormatInt(s.ID, 10)
}

// Label is the text shown in select inputs.
func (s Sala) Label() string {
	return s.Nombre + " (cap. " + strconv.Itoa(s.Capacidad) + ")"
}
