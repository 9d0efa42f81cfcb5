package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"gymfront/internal/domain/pago"
)

// PaymentsAPI defines the backend call needed by Checkout.
type PaymentsAPI interface {
	CrearSesionPago(ctx context.Context, req pago.CheckoutRequest) (pago.CheckoutSession, error)
}

// CheckoutInput carries the form values of a pay action.
type CheckoutInput struct {
	Tipo     string
	ObjetoID string
	UserID   int64
}

// CheckoutDeps holds dependencies for Checkout.
type CheckoutDeps struct {
	API       PaymentsAPI
	PublicURL string // absolute base URL of this front end
}

// ExecuteCheckout creates a hosted checkout session and returns its URL.
// PRE: PublicURL is absolute
// POST: Returns a non-empty URL or an error; success and cancel URLs point at the result pages for Tipo
func ExecuteCheckout(ctx context.Context, input CheckoutInput, deps CheckoutDeps) (string, error) {
	id, err := pago.ParseObjetoID(input.ObjetoID)
	if err != nil {
		return "", err
	}
	base := strings.TrimRight(deps.PublicURL, "/")
	req := pago.CheckoutRequest{
		TipoObjeto: input.Tipo,
		ObjetoID:   id,
		SuccessURL: base + pago.ResultPath(input.Tipo, true),
		CancelURL:  base + pago.ResultPath(input.Tipo, false),
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	sess, err := deps.API.CrearSesionPago(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(sess.URL) == "" {
		slog.Error("checkout_without_url", "user_id", input.UserID, "tipo", input.Tipo, "objeto_id", id)
		return "", pago.ErrNoCheckoutURL
	}
	slog.Info("checkout_started", "user_id", input.UserID, "tipo", input.Tipo, "objeto_id", id)
	return sess.URL, nil
}
