package promocion

import (
	"strconv"
	"time"
)

// Promocion is a discount campaign with a validity range and an active flag.
type Promocion struct {
	ID          int64   `json:"id"`
	Nombre      string  `json:"nombre"`
	Tipo        string  `json:"tipo"`
	Estado      bool    `json:"estado"`
	Descripcion string  `json:"descripcion"`
	Descuento   float64 `json:"descuento"`
	FechaIni    string  `json:"fecha_ini"`
	FechaFin    string  `json:"fecha_fin"`
}

// Key returns the identifier used in resource URLs.
func (p Promocion) Key() string {
	return strconv.FormatInt(p.ID, 10)
}

// DescuentoLabel renders the discount as a percentage.
func (p Promocion) DescuentoLabel() string {
	return strconv.FormatFloat(p.Descuento, 'f', -1, 64) + "%"
}

// Vigente reports whether the promotion is active and now falls inside its range.
// Unparseable bounds are treated as open.
func (p Promocion) Vigente(now time.Time) bool {
	if !p.Estado {
		return false
	}
	day := now.Format(time.DateOnly)
	if ini, ok := ParseFecha(p.FechaIni); ok && day < ini.Format(time.DateOnly) {
		return false
	}
	if fin, ok := ParseFecha(p.FechaFin); ok && day > fin.Format(time.DateOnly) {
		return false
	}
	return true
}

// ParseFecha accepts a plain date or an RFC 3339 timestamp.
func ParseFecha(s string) (time.Time, bool) {
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Input is the create/update payload for /promociones/.
type Input struct {
	Nombre      string  `json:"nombre" validate:"required,max=100"`
	Tipo        string  `json:"tipo" validate:"required,max=50"`
	Estado      bool    `json:"estado"`
	Descripcion string  `json:"descripcion" validate:"required,max=500"`
	Descuento   float64 `json:"descuento" validate:"gte=0,lte=100"`
	FechaIni    string  `json:"fecha_ini" validate:"required,fecha"`
	FechaFin    string  `json:"fecha_fin" validate:"required,fecha"`
}
