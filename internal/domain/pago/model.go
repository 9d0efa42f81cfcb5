package pago

import (
	"errors"
	"strconv"
)

// Object types accepted by the checkout endpoint.
const (
	TipoSuscripcion = "suscripcion"
	TipoPromocion   = "promocion"
)

var (
	ErrTipoInvalido   = errors.New("tipo de objeto inválido")
	ErrObjetoInvalido = errors.New("objeto inválido")
	// ErrNoCheckoutURL is returned when the backend answers without a redirect URL.
	ErrNoCheckoutURL = errors.New("no se recibió la URL de pago")
)

// CheckoutRequest asks the backend to create a hosted checkout session.
type CheckoutRequest struct {
	TipoObjeto string `json:"tipo_objeto"`
	ObjetoID   int64  `json:"objeto_id"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// Validate checks the request before it is sent.
// PRE: CheckoutRequest is populated
// POST: Returns nil if valid, error otherwise
func (c CheckoutRequest) Validate() error {
	if c.TipoObjeto != TipoSuscripcion && c.TipoObjeto != TipoPromocion {
		return ErrTipoInvalido
	}
	if c.ObjetoID <= 0 {
		return ErrObjetoInvalido
	}
	return nil
}

// CheckoutSession is the backend's answer. URL is the hosted checkout page.
type CheckoutSession struct {
	URL string `json:"url"`
}

// ResultPath returns the page the checkout provider sends the user back to.
func ResultPath(tipo string, exitoso bool) string {
	outcome := "cancelado"
	if exitoso {
		outcome = "exitoso"
	}
	return "/cliente/" + tipo + "-pago-" + outcome
}

// ParseObjetoID reads a positive object id from a form value.
func ParseObjetoID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrObjetoInvalido
	}
	return id, nil
}
