package antecedente

import (
	"math"
	"strconv"
	"strings"
)

// Antecedente is a clinical/nutritional assessment record for a client.
type Antecedente struct {
	ID                    int64    `json:"id"`
	Cliente               int64    `json:"cliente"`
	Nutricionista         int64    `json:"nutricionista"`
	Fecha                 string   `json:"fecha"`
	Diagnostico           string   `json:"diagnostico"`
	Recomendaciones       string   `json:"recomendaciones"`
	Peso                  *float64 `json:"peso"`
	Altura                *float64 `json:"altura"`
	IMC                   *float64 `json:"imc"`
	GC                    *float64 `json:"gc"`
	CC                    *float64 `json:"cc"`
	FechaProxConsulta     string   `json:"fecha_prox_consulta,omitempty"`
	ClienteUsername       string   `json:"cliente_username,omitempty"`
	ClienteNombre         string   `json:"cliente_nombre,omitempty"`
	ClienteApellido       string   `json:"cliente_apellido,omitempty"`
	NutricionistaUsername string   `json:"nutricionista_username,omitempty"`
	NutricionistaNombre   string   `json:"nutricionista_nombre,omitempty"`
	NutricionistaApellido string   `json:"nutricionista_apellido,omitempty"`
}

// Key returns the identifier used in resource URLs.
func (a Antecedente) Key() string {
	return strconv.FormatInt(a.ID, 10)
}

// ClienteDisplay is the client name shown in lists.
func (a Antecedente) ClienteDisplay() string {
	if a.ClienteNombre != "" {
		return a.ClienteNombre + " " + a.ClienteApellido
	}
	return a.ClienteUsername
}

// IMCDisplay renders the stored BMI, or recomputes it when the backend left it empty.
func (a Antecedente) IMCDisplay() string {
	if a.IMC != nil {
		return FormatIMC(*a.IMC)
	}
	if v, ok := IMCFrom(a.Peso, a.Altura); ok {
		return FormatIMC(v)
	}
	return ""
}

// ComputeIMC returns weight / height² rounded to two decimals.
// PRE: peso in kilograms, altura in metres
// POST: ok is false when altura <= 0 or either value is not finite
// INVARIANT: The result is derived only; it is never accepted from input
func ComputeIMC(peso, altura float64) (float64, bool) {
	if altura <= 0 || peso < 0 || math.IsNaN(peso) || math.IsNaN(altura) || math.IsInf(peso, 0) || math.IsInf(altura, 0) {
		return 0, false
	}
	return math.Round(peso/(altura*altura)*100) / 100, true
}

// IMCFrom computes the BMI from optional weight and height.
// POST: ok is false when weight is absent or height is absent or <= 0
func IMCFrom(peso, altura *float64) (float64, bool) {
	if peso == nil || altura == nil {
		return 0, false
	}
	return ComputeIMC(*peso, *altura)
}

// ParseMeasure reads a weight or height typed with a decimal point or comma.
// POST: ok is false for blank, malformed or non-finite input
func ParseMeasure(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IMCText is the BMI of raw form values, or "" when it cannot be computed.
func IMCText(peso, altura string) string {
	p, ok := ParseMeasure(peso)
	if !ok {
		return ""
	}
	a, ok := ParseMeasure(altura)
	if !ok {
		return ""
	}
	if v, ok := ComputeIMC(p, a); ok {
		return FormatIMC(v)
	}
	return ""
}

// FormatIMC renders a BMI with exactly two decimals.
func FormatIMC(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Input is the create payload for /antecedentes/.
type Input struct {
	Cliente           int64    `json:"cliente" validate:"required,gt=0"`
	Nutricionista     int64    `json:"nutricionista" validate:"required,gt=0"`
	Fecha             string   `json:"fecha" validate:"required,fecha"`
	Diagnostico       string   `json:"diagnostico" validate:"max=2000"`
	Recomendaciones   string   `json:"recomendaciones" validate:"max=2000"`
	Peso              *float64 `json:"peso,omitempty" validate:"omitempty,gt=0,lt=500"`
	Altura            *float64 `json:"altura,omitempty" validate:"omitempty,gt=0,lt=3"`
	IMC               *float64 `json:"imc,omitempty"`
	GC                *float64 `json:"gc,omitempty" validate:"omitempty,gte=0,lte=100"`
	CC                *float64 `json:"cc,omitempty" validate:"omitempty,gt=0"`
	FechaProxConsulta string   `json:"fecha_prox_consulta,omitempty" validate:"omitempty,fecha"`
}

// WithIMC discards any submitted BMI and derives it from weight and height.
// POST: IMC is nil unless both weight and a positive height are present
func (in Input) WithIMC() Input {
	in.IMC = nil
	if v, ok := IMCFrom(in.Peso, in.Altura); ok {
		in.IMC = &v
	}
	return in
}
