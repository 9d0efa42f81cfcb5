package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gymfront/internal/adapters/http/middleware"
	"gymfront/internal/application/crud"
	"gymfront/internal/application/orchestrators"
	"gymfront/internal/domain/antecedente"
	"gymfront/internal/domain/cliente"
	"gymfront/internal/domain/disciplina"
	"gymfront/internal/domain/horario"
	"gymfront/internal/domain/instructor"
	"gymfront/internal/domain/nutricionista"
	"gymfront/internal/domain/promocion"
	"gymfront/internal/domain/reserva"
	"gymfront/internal/domain/role"
	"gymfront/internal/domain/suscripcion"
	"gymfront/internal/domain/usuario"
)

func idText(id int64) string {
	return strconv.FormatInt(id, 10)
}

func siNo(b bool, si, no string) string {
	if b {
		return si
	}
	return no
}

// saveAntecedente creates an antecedent through the orchestrator so the BMI is always derived.
func (s *Server) saveAntecedente(ctx context.Context, _ middleware.Session, in antecedente.Input) error {
	_, err := orchestrators.ExecuteSaveAntecedente(ctx, in, orchestrators.SaveAntecedenteDeps{Antecedentes: s.api.Antecedentes})
	return err
}

func (s *Server) today() map[string]string {
	return map[string]string{"fecha": s.now().Format(time.DateOnly)}
}

var antecedenteColumns = []column[antecedente.Antecedente]{
	{Header: "Cliente", Value: antecedente.Antecedente.ClienteDisplay, Sort: "cliente"},
	{Header: "Fecha", Value: func(a antecedente.Antecedente) string { return a.Fecha }, Sort: "fecha"},
	{Header: "IMC", Value: antecedente.Antecedente.IMCDisplay},
	{Header: "Diagnóstico", Value: func(a antecedente.Antecedente) string { return a.Diagnostico }, Markdown: true},
	{Header: "Recomendaciones", Value: func(a antecedente.Antecedente) string { return a.Recomendaciones }, Markdown: true},
	{Header: "Próxima consulta", Value: func(a antecedente.Antecedente) string { return a.FechaProxConsulta }},
}

func antecedenteSearch(a antecedente.Antecedente) []string {
	return []string{a.ClienteDisplay(), a.ClienteUsername, a.NutricionistaUsername, a.Diagnostico}
}

var reservaColumns = []column[reserva.Reserva]{
	{Header: "Disciplina", Value: func(r reserva.Reserva) string { return r.HorarioDisciplinaNombre }, Sort: "disciplina"},
	{Header: "Día", Value: func(r reserva.Reserva) string { return r.HorarioDia }},
	{Header: "Hora", Value: func(r reserva.Reserva) string { return horario.ShortTime(r.HorarioHoraIni) }},
	{Header: "Sala", Value: func(r reserva.Reserva) string { return r.HorarioSalaNombre }},
	{Header: "Fecha", Value: func(r reserva.Reserva) string { return r.Fecha }, Sort: "fecha"},
	{Header: "Estado", Value: func(r reserva.Reserva) string { return r.Estado }, Sort: "estado"},
}

var reservaEstadoFilter = listFilter[reserva.Reserva]{
	Param:   "estado",
	Label:   "Estado",
	Options: fixed[reserva.Reserva](reserva.Estados),
	Match:   func(r reserva.Reserva, v string) bool { return r.Estado == v },
}

var horarioColumns = []column[horario.Horario]{
	{Header: "Disciplina", Value: func(h horario.Horario) string { return h.DisciplinaNombre }, Sort: "disciplina"},
	{Header: "Día", Value: func(h horario.Horario) string { return h.Dia }},
	{Header: "Inicio", Value: func(h horario.Horario) string { return horario.ShortTime(h.HoraIni) }, Sort: "hora"},
	{Header: "Fin", Value: func(h horario.Horario) string { return horario.ShortTime(h.HoraFin) }},
	{Header: "Sala", Value: func(h horario.Horario) string { return h.SalaNombre }},
	{Header: "Instructor", Value: func(h horario.Horario) string { return h.InstructorUsername }},
	{Header: "Cupo", Value: func(h horario.Horario) string { return strconv.Itoa(h.Cupo) }},
}

var horarioFilters = []listFilter[horario.Horario]{
	{
		Param:   "disciplina",
		Label:   "Disciplina",
		Options: distinct(func(h horario.Horario) string { return h.DisciplinaNombre }),
		Match:   func(h horario.Horario, v string) bool { return h.DisciplinaNombre == v },
	},
	{
		Param:   "dia",
		Label:   "Día",
		Options: fixed[horario.Horario](horario.Dias),
		Match:   func(h horario.Horario, v string) bool { return h.Dia == v },
	},
}

func horarioSearch(h horario.Horario) []string {
	return []string{h.DisciplinaNombre, h.SalaNombre, h.InstructorUsername, h.Dia}
}

var disciplinaColumns = []column[disciplina.Disciplina]{
	{Header: "Nombre", Value: func(d disciplina.Disciplina) string { return d.Nombre }, Sort: "nombre"},
	{Header: "Grupo", Value: func(d disciplina.Disciplina) string { return d.Grupo }, Sort: "grupo"},
	{Header: "Cupo", Value: func(d disciplina.Disciplina) string { return strconv.Itoa(d.Cupo) }},
	{Header: "Sala", Value: func(d disciplina.Disciplina) string { return d.SalaNombre }},
	{Header: "Instructor", Value: func(d disciplina.Disciplina) string { return d.InstructorUsername }},
	{Header: "Descripción", Value: func(d disciplina.Disciplina) string { return d.Descripcion }, Markdown: true},
}

func disciplinaSearch(d disciplina.Disciplina) []string {
	return []string{d.Nombre, d.Grupo, d.InstructorUsername, d.SalaNombre}
}

var clienteColumns = []column[cliente.Cliente]{
	{Header: "Usuario", Value: func(c cliente.Cliente) string { return c.UsuarioUsername }, Sort: "usuario"},
	{Header: "Nombre", Value: func(c cliente.Cliente) string { return c.Nombre + " " + c.ApellidoPaterno }},
	{Header: "Correo", Value: func(c cliente.Cliente) string { return c.Email }},
	{Header: "Suscripción", Value: func(c cliente.Cliente) string { return c.SuscripcionActualNombre }, Sort: "suscripcion"},
	{Header: "Inicio", Value: func(c cliente.Cliente) string { return c.FechaIniMem }},
	{Header: "Fin", Value: func(c cliente.Cliente) string { return c.FechaFinMem }, Sort: "fin"},
}

func clienteSearch(c cliente.Cliente) []string {
	return []string{c.UsuarioUsername, c.Email, c.Nombre, c.ApellidoPaterno, c.SuscripcionActualNombre}
}

func (s *Server) registerAdmin(mux *http.ServeMux) {
	guard := middleware.RequireRole(s.metrics, role.Administrador)
	base := role.BasePath(role.Administrador)
	mux.Handle("GET "+base+"/dashboard", guard(http.HandlerFunc(s.handleAdminDashboard)))

	salas := refOptions(s.api.Salas, nil, nil)
	instructores := refOptions(s.api.Instructores, nil, nil)
	nutricionistas := refOptions(s.api.Nutricionistas, nil, nil)
	disciplinas := refOptions(s.api.Disciplinas, nil, nil)
	suscripciones := refOptions(s.api.Suscripciones, nil, nil)
	clientes := refOptions(s.api.Clientes, nil, nil)
	horariosConCupo := refOptions(s.api.Horarios, nil, horario.Horario.TieneCupo)
	usuariosCliente := refOptions(s.api.Usuarios, url.Values{"rol": {role.Cliente.String()}}, func(u usuario.Usuario) bool {
		return u.Rol == role.Cliente.String()
	})

	(&resourcePage[usuario.Usuario, usuario.Input]{
		s: s, title: "Usuarios", singular: "usuario", base: base + "/usuarios", col: s.api.Usuarios,
		columns: []column[usuario.Usuario]{
			{Header: "Usuario", Value: func(u usuario.Usuario) string { return u.Username }, Sort: "username"},
			{Header: "Nombre", Value: usuario.Usuario.NombreCompleto, Sort: "nombre"},
			{Header: "Correo", Value: func(u usuario.Usuario) string { return u.Email }, Sort: "email"},
			{Header: "Rol", Value: func(u usuario.Usuario) string { return u.Rol }, Sort: "rol"},
		},
		search: func(u usuario.Usuario) []string { return []string{u.Username, u.Email, u.NombreCompleto()} },
		filters: []listFilter[usuario.Usuario]{{
			Param:   "rol",
			Label:   "Rol",
			Options: func([]usuario.Usuario) []crud.Option { return roleOptions() },
			Match:   func(u usuario.Usuario, v string) bool { return u.Rol == v },
		}},
		schema:    usuarioSchema,
		canCreate: true, canEdit: true, canDelete: true,
	}).register(mux, guard)

	(&resourcePage[cliente.Cliente, cliente.Input]{
		s: s, title: "Clientes", singular: "cliente", base: base + "/clientes", col: s.api.Clientes,
		columns:   clienteColumns,
		search:    clienteSearch,
		schema:    clienteSchema,
		refs:      map[string]optionLoader{"usuario": usuariosCliente, "suscripcion_actual": suscripciones},
		keyField:  "usuario",
		canCreate: true, canEdit: true, canDelete: true,
	}).register(mux, guard)

	(&resourcePage[disciplina.Disciplina, disciplina.Input]{
		s: s, title: "Disciplinas", singular: "disciplina", base: base + "/disciplinas", col: s.api.Disciplinas,
		columns:   disciplinaColumns,
		search:    disciplinaSearch,
		schema:    disciplinaSchema,
		refs:      map[string]optionLoader{"sala": salas, "instructor": instructores},
		canCreate: true, canEdit: true, canDelete: true,
	}).register(mux, guard)

	(&resourcePage[horario.Horario, horario.Input]{
		s: s, title: "Horarios", singular: "horario", base: base + "/horarios", col: s.api.Horarios,
		columns:   horarioColumns,
		search:    horarioSearch,
		filters:   horarioFilters,
		schema:    horarioSchema,
		refs:      map[string]optionLoader{"disciplina": disciplinas, "sala": salas, "instructor": instructores},
		defaults:  func() map[string]string { return map[string]string{"cupo": strconv.Itoa(horario.DefaultCupo)} },
		canCreate: true, canEdit: true, canDelete: true,
	}).register(mux, guard)

	(&resourcePage[suscripcion.Suscripcion, suscripcion.Input]{
		s: s, title: "Suscripciones", singular: "suscripción", base: base + "/suscripciones", col: s.api.Suscripciones,
		columns: []column[suscripcion.Suscripcion]{
			{Header: "Nombre", Value: func(x suscripcion.Suscripcion) string { return x.Nombre }, Sort: "nombre"},
			{Header: "Tipo", Value: func(x suscripcion.Suscripcion) string { return x.Tipo }, Sort: "tipo"},
			{Header: "Precio", Value: func(x suscripcion.Suscripcion) string { return x.Precio.Display() }},
			{Header: "Descripción", Value: func(x suscripcion.Suscripcion) string { return x.Descripcion }, Markdown: true},
		},
		search:    func(x suscripcion.Suscripcion) []string { return []string{x.Nombre, x.Tipo} },
		schema:    suscripcionSchema,
		canCreate: true, canEdit: true, canDelete: true,
	}).register(mux, guard)

	(&resourcePage[promocion.Promocion, promocion.Input]{
		s: s, title: "Promociones", singular: "promoción", base: base + "/promociones", col: s.api.Promociones,
		columns: []column[promocion.Promocion]{
			{Header: "Nombre", Value: func(p promocion.Promocion) string { return p.Nombre }, Sort: "nombre"},
			{Header: "Tipo", Value: func(p promocion.Promocion) string { return p.Tipo }},
			{Header: "Descuento", Value: promocion.Promocion.DescuentoLabel},
			{Header: "Inicio", Value: func(p promocion.Promocion) string { return p.FechaIni }, Sort: "inicio"},
			{Header: "Fin", Value: func(p promocion.Promocion) string { return p.FechaFin }},
			{Header: "Estado", Value: func(p promocion.Promocion) string { return siNo(p.Estado, "Activa", "Inactiva") }},
			{Header: "Descripción", Value: func(p promocion.Promocion) string { return p.Descripcion }, Markdown: true},
		},
		search:    func(p promocion.Promocion) []string { return []string{p.Nombre, p.Tipo, p.Descripcion} },
		schema:    promocionSchema,
		canCreate: true, canEdit: true, canDelete: true,
	}).register(mux, guard)

	reservas := &resourcePage[reserva.Reserva, reserva.Input]{
		s: s, title: "Reservas", singular: "reserva", base: base + "/reservas", col: s.api.Reservas,
		columns: append([]column[reserva.Reserva]{
			{Header: "Cliente", Value: func(r reserva.Reserva) string { return r.ClienteUsername }, Sort: "cliente"},
		}, reservaColumns...),
		search: func(r reserva.Reserva) []string {
			return []string{r.ClienteUsername, r.HorarioDisciplinaNombre, r.HorarioSalaNombre}
		},
		filters:   []listFilter[reserva.Reserva]{reservaEstadoFilter},
		schema:    reservaSchema,
		refs:      map[string]optionLoader{"cliente": clientes, "horario": horariosConCupo},
		canCreate: true, canDelete: true,
	}
	reservas.actions = func(_ middleware.Session, r reserva.Reserva) []rowAction {
		if !r.CanCancel() {
			return nil
		}
		return []rowAction{{Label: "Cancelar", URL: reservas.base + "/" + r.Key() + "/cancelar", Post: true}}
	}
	reservas.register(mux, guard)
	mux.Handle("POST "+reservas.base+"/{id}/cancelar", guard(s.cancelarReserva(reservas, false)))

	(&resourcePage[antecedente.Antecedente, antecedente.Input]{
		s: s, title: "Antecedentes", singular: "antecedente", base: base + "/antecedentes", col: s.api.Antecedentes,
		columns: append([]column[antecedente.Antecedente]{
			{Header: "Nutricionista", Value: func(a antecedente.Antecedente) string { return a.NutricionistaUsername }, Sort: "nutricionista"},
		}, antecedenteColumns...),
		search:    antecedenteSearch,
		schema:    antecedenteSchema,
		refs:      map[string]optionLoader{"cliente": clientes, "nutricionista": nutricionistas},
		defaults:  s.today,
		create:    s.saveAntecedente,
		canCreate: true,
	}).register(mux, guard)

	(&resourcePage[instructor.Instructor, struct{}]{
		s: s, title: "Instructores", singular: "instructor", base: base + "/instructores",
		fetch: func(ctx context.Context, _ middleware.Session) ([]instructor.Instructor, error) {
			return s.api.Instructores.List(ctx, nil)
		},
		columns: []column[instructor.Instructor]{
			{Header: "Instructor", Value: instructor.Instructor.Label, Sort: "nombre"},
			{Header: "Correo", Value: func(i instructor.Instructor) string { return i.Email }},
			{Header: "Especialidad", Value: func(i instructor.Instructor) string { return i.Especialidad }, Sort: "especialidad"},
			{Header: "Ingreso", Value: func(i instructor.Instructor) string { return i.FechaIngreso }},
		},
		search: func(i instructor.Instructor) []string {
			return []string{i.UsuarioUsername, i.Nombre, i.ApellidoPaterno, i.Especialidad}
		},
		actions: func(_ middleware.Session, i instructor.Instructor) []rowAction {
			return []rowAction{{Label: "Ver", URL: base + "/instructores/" + i.Key()}}
		},
	}).register(mux, guard)
	mux.Handle("GET "+base+"/instructores/{id}", guard(http.HandlerFunc(s.handleInstructorDetail)))

	(&resourcePage[nutricionista.Nutricionista, struct{}]{
		s: s, title: "Nutricionistas", singular: "nutricionista", base: base + "/nutricionistas",
		fetch: func(ctx context.Context, _ middleware.Session) ([]nutricionista.Nutricionista, error) {
			return s.api.Nutricionistas.List(ctx, nil)
		},
		columns: []column[nutricionista.Nutricionista]{
			{Header: "Nutricionista", Value: nutricionista.Nutricionista.Label, Sort: "nombre"},
			{Header: "Correo", Value: func(n nutricionista.Nutricionista) string { return n.Email }},
			{Header: "Horario de atención", Value: func(n nutricionista.Nutricionista) string { return n.HorarioAtencion }},
			{Header: "Titulación", Value: func(n nutricionista.Nutricionista) string { return n.FechaTitulacion }},
		},
		search: func(n nutricionista.Nutricionista) []string {
			return []string{n.UsuarioUsername, n.Nombre, n.ApellidoPaterno}
		},
		actions: func(_ middleware.Session, n nutricionista.Nutricionista) []rowAction {
			return []rowAction{{Label: "Ver", URL: base + "/nutricionistas/" + n.Key()}}
		},
	}).register(mux, guard)

	detail := &resourcePage[antecedente.Antecedente, antecedente.Input]{
		s: s, singular: "antecedente", base: base + "/nutricionistas", col: s.api.Antecedentes,
		schema: antecedenteSchema,
		refs:   map[string]optionLoader{"cliente": clientes, "nutricionista": nutricionistas},
	}
	mux.Handle("GET "+base+"/nutricionistas/{id}", guard(s.nutricionistaDetail(detail)))
	mux.Handle("POST "+base+"/nutricionistas/{id}/antecedentes", guard(s.nutricionistaDetail(detail)))
}

type dashCard struct {
	Title string
	Value string
	Link  string
	Icon  string
}

type dashboardView struct {
	Greeting  string
	Cards     []dashCard
	ListTitle string
	List      []field
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	var (
		usuarios []usuario.Usuario
		clientes []cliente.Cliente
		reservas []reserva.Reserva
		horarios []horario.Horario
	)
	err := crud.LoadAll(r.Context(),
		crud.Into(&usuarios, func(ctx context.Context) ([]usuario.Usuario, error) { return s.api.Usuarios.List(ctx, nil) }),
		crud.Into(&clientes, func(ctx context.Context) ([]cliente.Cliente, error) { return s.api.Clientes.List(ctx, nil) }),
		crud.Into(&reservas, func(ctx context.Context) ([]reserva.Reserva, error) { return s.api.Reservas.List(ctx, nil) }),
		crud.Into(&horarios, func(ctx context.Context) ([]horario.Horario, error) { return s.api.Horarios.List(ctx, nil) }),
	)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	now := s.now()
	vigentes := crud.Where(clientes, func(c cliente.Cliente) bool { return c.MembresiaVigente(now) })
	pendientes := crud.Where(reservas, func(x reserva.Reserva) bool { return x.Estado == reserva.EstadoPendiente })
	llenos := len(horarios) - len(horario.ConCupo(horarios))

	base := role.BasePath(role.Administrador)
	sess, _ := middleware.GetSessionFromContext(r.Context())
	view := dashboardView{
		Greeting: "Hola, " + sess.DisplayName(),
		Cards: []dashCard{
			{Title: "Usuarios", Value: strconv.Itoa(len(usuarios)), Link: base + "/usuarios", Icon: "users"},
			{Title: "Membresías vigentes", Value: strconv.Itoa(len(vigentes)) + " / " + strconv.Itoa(len(clientes)), Link: base + "/clientes", Icon: "calendar"},
			{Title: "Reservas pendientes", Value: strconv.Itoa(len(pendientes)), Link: base + "/reservas?estado=" + reserva.EstadoPendiente, Icon: "calendar-check"},
			{Title: "Horarios sin cupo", Value: strconv.Itoa(llenos), Link: base + "/horarios", Icon: "clipboard"},
		},
	}
	s.render(w, r, http.StatusOK, "dashboard.html", page{Title: "Dashboard", Data: view})
}

type instructorView struct {
	Instructor  instructor.Instructor
	Disciplinas []disciplina.Disciplina
	Horarios    []horario.Horario
	Back        string
}

// handleInstructorDetail shows an instructor with the disciplines and schedules assigned to them.
func (s *Server) handleInstructorDetail(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("id")
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		s.notFound(w, r)
		return
	}
	q := url.Values{"instructor": {key}}
	var view instructorView
	err = crud.LoadAll(r.Context(),
		crud.Into(&view.Instructor, func(ctx context.Context) (instructor.Instructor, error) { return s.api.Instructores.Get(ctx, key) }),
		crud.Into(&view.Disciplinas, func(ctx context.Context) ([]disciplina.Disciplina, error) { return s.api.Disciplinas.List(ctx, q) }),
		crud.Into(&view.Horarios, func(ctx context.Context) ([]horario.Horario, error) { return s.api.Horarios.List(ctx, q) }),
	)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view.Disciplinas = crud.Where(view.Disciplinas, func(d disciplina.Disciplina) bool {
		return d.Instructor != nil && *d.Instructor == id
	})
	view.Horarios = crud.Where(view.Horarios, func(h horario.Horario) bool { return h.Instructor == id })
	view.Back = role.BasePath(role.Administrador) + "/instructores"
	s.render(w, r, http.StatusOK, "instructor.html", page{Title: view.Instructor.Label(), Data: view})
}

type nutricionistaView struct {
	Nutricionista nutricionista.Nutricionista
	Antecedentes  []antecedente.Antecedente
	Form          formView
	Back          string
}

// nutricionistaDetail shows a nutritionist with their clinical antecedents and a
// "new antecedent" form preset to them. POST submits that form.
func (s *Server) nutricionistaDetail(p *resourcePage[antecedente.Antecedente, antecedente.Input]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSessionFromContext(r.Context())
		key := r.PathValue("id")
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.notFound(w, r)
			return
		}
		locked := map[string]string{"nutricionista": key}
		action := p.base + "/" + key + "/antecedentes"

		var (
			view   nutricionistaView
			schema crud.Schema
		)
		err = crud.LoadAll(r.Context(),
			crud.Into(&view.Nutricionista, func(ctx context.Context) (nutricionista.Nutricionista, error) {
				return s.api.Nutricionistas.Get(ctx, key)
			}),
			crud.Into(&view.Antecedentes, func(ctx context.Context) ([]antecedente.Antecedente, error) {
				return s.api.Antecedentes.List(ctx, url.Values{"nutricionista": {key}})
			}),
			crud.Into(&schema, func(ctx context.Context) (crud.Schema, error) {
				return p.formSchema(ctx, false, "", nil)
			}),
		)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		view.Antecedentes = crud.Where(view.Antecedentes, func(a antecedente.Antecedente) bool { return a.Nutricionista == id })
		view.Back = p.base
		title := view.Nutricionista.Label()

		if r.Method != http.MethodPost {
			view.Form = p.formView(schema, crud.NewFormState(s.today()), locked, action, false)
			s.render(w, r, http.StatusOK, "nutricionista.html", page{Title: title, Data: view})
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		r.PostForm.Set("nutricionista", key)
		form := crud.NewFormState(schema.Values(r.PostForm))
		var in antecedente.Input
		if fe := schema.Decode(r.PostForm, &in); fe != nil {
			form.AddErrors(fe)
			view.Form = p.formView(schema, form, locked, action, false)
			s.render(w, r, http.StatusUnprocessableEntity, "nutricionista.html", page{Title: title, Data: view})
			return
		}
		if err := s.saveAntecedente(r.Context(), sess, in); err != nil {
			if s.rejected(w, r, err) {
				return
			}
			status := statusFor(err)
			var invalid *orchestrators.InvalidInputError
			if errors.As(err, &invalid) {
				form.AddErrors(invalid.Fields)
				status = http.StatusUnprocessableEntity
			} else {
				form.ApplyServerError(err, schema.Names())
			}
			slog.Warn("create_failed", "resource", "antecedentes", "user_id", sess.UserID, "error", err)
			view.Form = p.formView(schema, form, locked, action, false)
			s.render(w, r, status, "nutricionista.html", page{Title: title, Data: view})
			return
		}
		http.Redirect(w, r, p.base+"/"+key+"?ok=creado", http.StatusSeeOther)
	}
}

// cancelarReserva changes a reservation's status to Cancelada. When scoped, the
// reservation must belong to the calling client.
func (s *Server) cancelarReserva(p *resourcePage[reserva.Reserva, reserva.Input], scoped bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSessionFromContext(r.Context())
		in := orchestrators.CancelarReservaInput{ReservaID: r.PathValue("id")}
		if scoped {
			in.ClienteID = sess.ProfileID
		}
		_, err := orchestrators.ExecuteCancelarReserva(r.Context(), in, orchestrators.ReservarDeps{Reservas: s.api.Reservas})
		switch {
		case err == nil:
			http.Redirect(w, r, p.base+"?ok=cancelada", http.StatusSeeOther)
		case errors.Is(err, orchestrators.ErrNotOwner):
			s.notFound(w, r)
		case errors.Is(err, reserva.ErrYaCancelada):
			p.renderList(w, r, "", "La reserva ya está cancelada.", http.StatusConflict)
		case s.rejected(w, r, err):
		default:
			slog.Warn("cancel_failed", "reserva_id", in.ReservaID, "user_id", sess.UserID, "error", err)
			p.renderList(w, r, "", crud.Message(err), statusFor(err))
		}
	}
}
