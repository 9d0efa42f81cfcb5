package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"gymfront/internal/adapters/backend"
	"gymfront/internal/adapters/http/middleware"
	"gymfront/internal/application/crud"
	"gymfront/internal/application/orchestrators"
	"gymfront/internal/domain/cliente"
	"gymfront/internal/domain/horario"
	"gymfront/internal/domain/pago"
	"gymfront/internal/domain/promocion"
	"gymfront/internal/domain/reserva"
	"gymfront/internal/domain/role"
	"gymfront/internal/domain/suscripcion"
)

// payAction is the Pagar button of a catalog row. volver names the page to
// re-render when the checkout cannot start.
func payAction(tipo, id, volver string) rowAction {
	return rowAction{
		Label:  "Pagar",
		URL:    role.BasePath(role.Cliente) + "/pagar",
		Post:   true,
		Fields: map[string]string{"tipo": tipo, "id": id, "volver": volver},
	}
}

func profileKey(sess middleware.Session) string {
	return idText(sess.ProfileID)
}

func (s *Server) registerCliente(mux *http.ServeMux) {
	guard := middleware.RequireRole(s.metrics, role.Cliente)
	base := role.BasePath(role.Cliente)
	mux.Handle("GET "+base+"/dashboard", guard(http.HandlerFunc(s.handleClienteDashboard)))
	mux.Handle("GET "+base+"/perfil", guard(http.HandlerFunc(s.handleClientePerfil)))

	horarios := &resourcePage[horario.Horario, horario.Input]{
		s: s, title: "Horarios disponibles", singular: "horario", base: base + "/horarios", col: s.api.Horarios,
		columns: horarioColumns,
		search:  horarioSearch,
		filters: horarioFilters,
		keep:    horario.Horario.TieneCupo,
	}
	horarios.actions = func(_ middleware.Session, h horario.Horario) []rowAction {
		return []rowAction{{Label: "Reservar", URL: horarios.base + "/" + h.Key() + "/reservar", Post: true}}
	}
	horarios.register(mux, guard)
	mux.Handle("POST "+horarios.base+"/{id}/reservar", guard(s.reservar(horarios, base+"/reservas")))

	reservas := &resourcePage[reserva.Reserva, reserva.Input]{
		s: s, title: "Mis reservas", singular: "reserva", base: base + "/reservas", col: s.api.Reservas,
		columns: reservaColumns,
		search: func(r reserva.Reserva) []string {
			return []string{r.HorarioDisciplinaNombre, r.HorarioSalaNombre, r.HorarioDia}
		},
		filters: []listFilter[reserva.Reserva]{reservaEstadoFilter},
		query:   func(sess middleware.Session) url.Values { return url.Values{"cliente": {profileKey(sess)}} },
		owns:    func(sess middleware.Session, r reserva.Reserva) bool { return r.Cliente == sess.ProfileID },
	}
	reservas.actions = func(_ middleware.Session, r reserva.Reserva) []rowAction {
		if !r.CanCancel() {
			return nil
		}
		return []rowAction{{Label: "Cancelar", URL: reservas.base + "/" + r.Key() + "/cancelar", Post: true, Danger: true}}
	}
	reservas.register(mux, guard)
	mux.Handle("POST "+reservas.base+"/{id}/cancelar", guard(s.cancelarReserva(reservas, true)))

	planes := &resourcePage[suscripcion.Suscripcion, suscripcion.Input]{
		s: s, title: "Suscripciones", singular: "suscripción", base: base + "/suscripciones", col: s.api.Suscripciones,
		columns: []column[suscripcion.Suscripcion]{
			{Header: "Nombre", Value: func(x suscripcion.Suscripcion) string { return x.Nombre }, Sort: "nombre"},
			{Header: "Tipo", Value: func(x suscripcion.Suscripcion) string { return x.Tipo }},
			{Header: "Precio", Value: func(x suscripcion.Suscripcion) string { return x.Precio.Display() }},
			{Header: "Descripción", Value: func(x suscripcion.Suscripcion) string { return x.Descripcion }, Markdown: true},
		},
		search: func(x suscripcion.Suscripcion) []string { return []string{x.Nombre, x.Tipo, x.Descripcion} },
	}
	planes.actions = func(_ middleware.Session, x suscripcion.Suscripcion) []rowAction {
		return []rowAction{payAction(pago.TipoSuscripcion, x.Key(), planes.base)}
	}
	planes.register(mux, guard)

	promociones := &resourcePage[promocion.Promocion, promocion.Input]{
		s: s, title: "Promociones", singular: "promoción", base: base + "/promociones", col: s.api.Promociones,
		columns: []column[promocion.Promocion]{
			{Header: "Nombre", Value: func(p promocion.Promocion) string { return p.Nombre }, Sort: "nombre"},
			{Header: "Descuento", Value: promocion.Promocion.DescuentoLabel},
			{Header: "Válida hasta", Value: func(p promocion.Promocion) string { return p.FechaFin }, Sort: "fin"},
			{Header: "Descripción", Value: func(p promocion.Promocion) string { return p.Descripcion }, Markdown: true},
		},
		search: func(p promocion.Promocion) []string { return []string{p.Nombre, p.Tipo, p.Descripcion} },
		keep:   func(p promocion.Promocion) bool { return p.Vigente(s.now()) },
	}
	promociones.actions = func(_ middleware.Session, p promocion.Promocion) []rowAction {
		return []rowAction{payAction(pago.TipoPromocion, p.Key(), promociones.base)}
	}
	promociones.register(mux, guard)

	mias := &resourcePage[suscripcion.DeCliente, struct{}]{
		s: s, title: "Mis suscripciones", singular: "suscripción", base: base + "/mis-suscripciones",
		fetch: func(ctx context.Context, _ middleware.Session) ([]suscripcion.DeCliente, error) {
			return s.api.MisSuscripciones(ctx)
		},
		columns: []column[suscripcion.DeCliente]{
			{Header: "Suscripción", Value: func(d suscripcion.DeCliente) string { return d.Suscripcion.Nombre }, Sort: "nombre"},
			{Header: "Precio", Value: func(d suscripcion.DeCliente) string { return d.Suscripcion.Precio.Display() }},
			{Header: "Inicio", Value: func(d suscripcion.DeCliente) string { return d.FechaInicio }, Sort: "inicio"},
			{Header: "Fin", Value: func(d suscripcion.DeCliente) string { return d.FechaFin }},
			{Header: "Días restantes", Value: func(d suscripcion.DeCliente) string { return strconv.Itoa(d.DiasRestantes) }},
			{Header: "Pago", Value: suscripcion.DeCliente.EstadoPagoLabel},
		},
		search: func(d suscripcion.DeCliente) []string { return []string{d.Suscripcion.Nombre, d.Suscripcion.Tipo} },
	}
	mias.actions = func(_ middleware.Session, d suscripcion.DeCliente) []rowAction {
		if !d.Pagable() {
			return nil
		}
		return []rowAction{payAction(pago.TipoSuscripcion, d.Suscripcion.Key(), mias.base)}
	}
	mias.register(mux, guard)

	for _, origin := range []interface {
		path() string
		relist(w http.ResponseWriter, r *http.Request, banner string, status int)
	}{planes, promociones, mias} {
		s.payOrigins[origin.path()] = origin.relist
	}
	mux.Handle("POST "+base+"/pagar", guard(http.HandlerFunc(s.handlePagar)))

	for _, tipo := range []string{pago.TipoSuscripcion, pago.TipoPromocion} {
		for _, exitoso := range []bool{true, false} {
			mux.Handle("GET "+pago.ResultPath(tipo, exitoso), guard(s.pagoResult(tipo, exitoso)))
		}
	}
}

func (p *resourcePage[T, D]) path() string { return p.base }

// relist re-renders the list with an error banner.
func (p *resourcePage[T, D]) relist(w http.ResponseWriter, r *http.Request, banner string, status int) {
	p.renderList(w, r, "", banner, status)
}

// reservar books a schedule for the calling client.
// POST: A full schedule is refused without a backend write; success lands on the client's reservations
func (s *Server) reservar(p *resourcePage[horario.Horario, horario.Input], done string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSessionFromContext(r.Context())
		h, err := s.api.Horarios.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			if s.rejected(w, r, err) {
				return
			}
			p.renderList(w, r, "", crud.Message(err), statusFor(err))
			return
		}
		if !h.TieneCupo() {
			slog.Info("reserva_sin_cupo", "horario_id", h.ID, "user_id", sess.UserID)
			p.renderList(w, r, "", "El horario ya no tiene cupo disponible.", http.StatusConflict)
			return
		}
		_, err = orchestrators.ExecuteReservar(r.Context(), orchestrators.ReservarInput{
			Horario: h,
			Email:   sess.Email,
			Nombre:  sess.DisplayName(),
		}, orchestrators.ReservarDeps{Reservas: s.api.Reservas, Sender: s.sender})
		if err != nil {
			if s.rejected(w, r, err) {
				return
			}
			msg := crud.Message(err)
			var apiErr *backend.APIError
			if errors.As(err, &apiErr) {
				if m := apiErr.Primary("horario", "cliente"); m != "" {
					msg = m
				}
			}
			slog.Warn("reserva_failed", "horario_id", h.ID, "user_id", sess.UserID, "error", err)
			p.renderList(w, r, "", msg, statusFor(err))
			return
		}
		http.Redirect(w, r, done+"?ok=reservada", http.StatusSeeOther)
	}
}

// handlePagar starts a hosted checkout and sends the browser to it.
// POST: Any failure re-renders the page the action came from; no redirect happens without a URL
func (s *Server) handlePagar(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	back, ok := s.payOrigins[r.PostFormValue("volver")]
	if !ok {
		back = s.payOrigins[role.BasePath(role.Cliente)+"/suscripciones"]
	}
	target, err := orchestrators.ExecuteCheckout(r.Context(), orchestrators.CheckoutInput{
		Tipo:     r.PostFormValue("tipo"),
		ObjetoID: r.PostFormValue("id"),
		UserID:   sess.UserID,
	}, orchestrators.CheckoutDeps{API: s.api, PublicURL: s.cfg.PublicURL})
	if err != nil {
		if s.rejected(w, r, err) {
			return
		}
		status := statusFor(err)
		msg := crud.Message(err)
		switch {
		case errors.Is(err, pago.ErrNoCheckoutURL):
			status = http.StatusBadGateway
			msg = "No se pudo iniciar el pago. Intenta de nuevo más tarde."
		case errors.Is(err, pago.ErrTipoInvalido), errors.Is(err, pago.ErrObjetoInvalido):
			status = http.StatusBadRequest
			msg = upperFirst(err.Error())
		}
		slog.Warn("checkout_failed", "user_id", sess.UserID, "error", err)
		back(w, r, msg, status)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

type pagoView struct {
	Exitoso bool
	Message string
	Back    string
}

func (s *Server) pagoResult(tipo string, exitoso bool) http.HandlerFunc {
	base := role.BasePath(role.Cliente)
	view := pagoView{Exitoso: exitoso, Back: base + "/mis-suscripciones"}
	title := "Pago cancelado"
	switch {
	case exitoso && tipo == pago.TipoPromocion:
		title = "Pago exitoso"
		view.Message = "Tu promoción quedó registrada."
	case exitoso:
		title = "Pago exitoso"
		view.Message = "Tu suscripción quedó registrada."
	case tipo == pago.TipoPromocion:
		view.Message = "No se realizó ningún cargo."
		view.Back = base + "/promociones"
	default:
		view.Message = "No se realizó ningún cargo."
		view.Back = base + "/suscripciones"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSessionFromContext(r.Context())
		slog.Info("checkout_result", "user_id", sess.UserID, "tipo", tipo, "exitoso", exitoso)
		s.render(w, r, http.StatusOK, "pago.html", page{Title: title, Data: view})
	}
}

func (s *Server) handleClienteDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	key := profileKey(sess)
	var (
		cli         cliente.Cliente
		reservas    []reserva.Reserva
		promociones []promocion.Promocion
	)
	err := crud.LoadAll(r.Context(),
		crud.Into(&cli, func(ctx context.Context) (cliente.Cliente, error) { return s.api.Clientes.Get(ctx, key) }),
		crud.Into(&reservas, func(ctx context.Context) ([]reserva.Reserva, error) {
			return s.api.Reservas.List(ctx, url.Values{"cliente": {key}})
		}),
		crud.Into(&promociones, func(ctx context.Context) ([]promocion.Promocion, error) { return s.api.Promociones.List(ctx, nil) }),
	)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	now := s.now()
	activas := crud.Where(reservas, func(x reserva.Reserva) bool { return x.Cliente == sess.ProfileID && !x.Cancelada() })
	vigentes := crud.Where(promociones, func(p promocion.Promocion) bool { return p.Vigente(now) })

	base := role.BasePath(role.Cliente)
	membresia := siNo(cli.MembresiaVigente(now), "Vigente", "Vencida")
	if cli.FechaFinMem != "" {
		membresia += " hasta " + cli.FechaFinMem
	}
	plan := cli.SuscripcionActualNombre
	if plan == "" {
		plan = "Sin suscripción"
	}
	view := dashboardView{
		Greeting: "Hola, " + sess.DisplayName(),
		Cards: []dashCard{
			{Title: "Membresía", Value: membresia, Link: base + "/perfil", Icon: "user"},
			{Title: "Suscripción", Value: plan, Link: base + "/mis-suscripciones", Icon: "box-open"},
			{Title: "Reservas activas", Value: strconv.Itoa(len(activas)), Link: base + "/reservas", Icon: "calendar-check"},
			{Title: "Promociones vigentes", Value: strconv.Itoa(len(vigentes)), Link: base + "/promociones", Icon: "clipboard"},
		},
		ListTitle: "Próximas clases",
	}
	for _, x := range activas {
		view.List = append(view.List, field{Label: x.HorarioDisciplinaNombre, Value: x.HorarioDia + " " + horario.ShortTime(x.HorarioHoraIni)})
	}
	s.render(w, r, http.StatusOK, "dashboard.html", page{Title: "Dashboard", Data: view})
}
