package backend

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"gymfront/internal/domain/antecedente"
	"gymfront/internal/domain/cliente"
	"gymfront/internal/domain/disciplina"
	"gymfront/internal/domain/horario"
	"gymfront/internal/domain/instructor"
	"gymfront/internal/domain/nutricionista"
	"gymfront/internal/domain/pago"
	"gymfront/internal/domain/promocion"
	"gymfront/internal/domain/reserva"
	"gymfront/internal/domain/role"
	"gymfront/internal/domain/sala"
	"gymfront/internal/domain/suscripcion"
	"gymfront/internal/domain/usuario"
)

// API groups every resource the front end consumes.
type API struct {
	client *Client

	Usuarios       *Collection[usuario.Usuario, usuario.Input]
	Clientes       *Collection[cliente.Cliente, cliente.Input]
	Disciplinas    *Collection[disciplina.Disciplina, disciplina.Input]
	Instructores   *Collection[instructor.Instructor, None]
	Nutricionistas *Collection[nutricionista.Nutricionista, None]
	Antecedentes   *Collection[antecedente.Antecedente, antecedente.Input]
	Horarios       *Collection[horario.Horario, horario.Input]
	Reservas       *Collection[reserva.Reserva, reserva.Input]
	Salas          *Collection[sala.Sala, None]
	Suscripciones  *Collection[suscripcion.Suscripcion, suscripcion.Input]
	Promociones    *Collection[promocion.Promocion, promocion.Input]
}

// NewAPI binds all collections to c.
func NewAPI(c *Client) *API {
	return &API{
		client:         c,
		Usuarios:       NewCollection[usuario.Usuario, usuario.Input](c, "/usuarios/"),
		Clientes:       NewCollection[cliente.Cliente, cliente.Input](c, "/clientes/"),
		Disciplinas:    NewCollection[disciplina.Disciplina, disciplina.Input](c, "/disciplinas/"),
		Instructores:   NewCollection[instructor.Instructor, None](c, "/instructores/"),
		Nutricionistas: NewCollection[nutricionista.Nutricionista, None](c, "/nutricionistas/"),
		Antecedentes:   NewCollection[antecedente.Antecedente, antecedente.Input](c, "/antecedentes/"),
		Horarios:       NewCollection[horario.Horario, horario.Input](c, "/horarios/"),
		Reservas:       NewCollection[reserva.Reserva, reserva.Input](c, "/reservas/"),
		Salas:          NewCollection[sala.Sala, None](c, "/salas/"),
		Suscripciones:  NewCollection[suscripcion.Suscripcion, suscripcion.Input](c, "/suscripciones/"),
		Promociones:    NewCollection[promocion.Promocion, promocion.Input](c, "/promociones/"),
	}
}

// Client returns the underlying HTTP client.
func (a *API) Client() *Client {
	return a.client
}

// MisDisciplinas returns the disciplines assigned to the calling instructor.
func (a *API) MisDisciplinas(ctx context.Context) (disciplina.Asignadas, error) {
	var out disciplina.Asignadas
	err := a.client.Do(ctx, http.MethodGet, "/disciplinas/mis-disciplinas/", nil, nil, &out)
	if out.Disciplinas == nil {
		out.Disciplinas = []disciplina.Disciplina{}
	}
	return out, err
}

// MisSuscripciones returns the calling client's subscriptions.
func (a *API) MisSuscripciones(ctx context.Context) ([]suscripcion.DeCliente, error) {
	var raw []suscripcion.DeCliente
	if err := a.client.Do(ctx, http.MethodGet, "/suscripciones-clientes/mis-suscripciones", nil, nil, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = []suscripcion.DeCliente{}
	}
	return raw, nil
}

// CrearSesionPago asks the backend for a hosted checkout session.
// POST: The returned URL may be empty; callers must treat that as a failure
func (a *API) CrearSesionPago(ctx context.Context, req pago.CheckoutRequest) (pago.CheckoutSession, error) {
	var out pago.CheckoutSession
	err := a.client.Do(ctx, http.MethodPost, "/pagos/crear_sesion_stripe/", nil, req, &out)
	return out, err
}

// TokenPair is the answer of the token endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair.
func (a *API) Login(ctx context.Context, username, password string) (TokenPair, error) {
	var out TokenPair
	body := map[string]string{"username": username, "password": password}
	err := a.client.Do(WithToken(ctx, ""), http.MethodPost, a.client.loginPath, nil, body, &out)
	return out, err
}

// Me returns the account behind the bearer token in ctx.
func (a *API) Me(ctx context.Context) (usuario.Usuario, error) {
	var out usuario.Usuario
	err := a.client.Do(ctx, http.MethodGet, "/usuarios/me/", nil, nil, &out)
	return out, err
}

// ProfileExists reports whether the role record keyed by userID exists.
// Roles without a profile record report false.
func (a *API) ProfileExists(ctx context.Context, r role.Role, userID int64) (bool, error) {
	key := strconv.FormatInt(userID, 10)
	var err error
	switch r {
	case role.Cliente:
		_, err = a.Clientes.Get(ctx, key)
	case role.Instructor:
		_, err = a.Instructores.Get(ctx, key)
	case role.Nutricionista:
		_, err = a.Nutricionistas.Get(ctx, key)
	default:
		return false, nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Kind == KindNotFound {
		return false, nil
	}
	return err == nil, err
}
