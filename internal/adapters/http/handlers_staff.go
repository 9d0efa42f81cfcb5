package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gymfront/internal/adapters/http/middleware"
	"gymfront/internal/application/crud"
	"gymfront/internal/domain/antecedente"
	"gymfront/internal/domain/cliente"
	"gymfront/internal/domain/disciplina"
	"gymfront/internal/domain/horario"
	"gymfront/internal/domain/role"
)

func (s *Server) registerNutricionista(mux *http.ServeMux) {
	guard := middleware.RequireRole(s.metrics, role.Nutricionista)
	base := role.BasePath(role.Nutricionista)
	mux.Handle("GET "+base+"/dashboard", guard(http.HandlerFunc(s.handleNutricionistaDashboard)))

	(&resourcePage[antecedente.Antecedente, antecedente.Input]{
		s: s, title: "Antecedentes", singular: "antecedente", base: base + "/antecedentes", col: s.api.Antecedentes,
		columns: antecedenteColumns,
		search:  antecedenteSearch,
		query: func(sess middleware.Session) url.Values {
			return url.Values{"nutricionista": {profileKey(sess)}}
		},
		owns: func(sess middleware.Session, a antecedente.Antecedente) bool {
			return a.Nutricionista == sess.ProfileID
		},
		schema: antecedenteSchema,
		refs: map[string]optionLoader{
			"cliente":       refOptions(s.api.Clientes, nil, nil),
			"nutricionista": refOptions(s.api.Nutricionistas, nil, nil),
		},
		defaults: s.today,
		preset: func(sess middleware.Session) map[string]string {
			return map[string]string{"nutricionista": profileKey(sess)}
		},
		create:    s.saveAntecedente,
		canCreate: true,
	}).register(mux, guard)

	(&resourcePage[cliente.Cliente, cliente.Input]{
		s: s, title: "Clientes", singular: "cliente", base: base + "/clientes", col: s.api.Clientes,
		columns: clienteColumns,
		search:  clienteSearch,
	}).register(mux, guard)
}

func (s *Server) handleNutricionistaDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	var (
		propios  []antecedente.Antecedente
		clientes []cliente.Cliente
	)
	err := crud.LoadAll(r.Context(),
		crud.Into(&propios, func(ctx context.Context) ([]antecedente.Antecedente, error) {
			return s.api.Antecedentes.List(ctx, url.Values{"nutricionista": {profileKey(sess)}})
		}),
		crud.Into(&clientes, func(ctx context.Context) ([]cliente.Cliente, error) { return s.api.Clientes.List(ctx, nil) }),
	)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	propios = crud.Where(propios, func(a antecedente.Antecedente) bool { return a.Nutricionista == sess.ProfileID })
	today := s.now().Format(time.DateOnly)
	proximas := crud.Where(propios, func(a antecedente.Antecedente) bool {
		return a.FechaProxConsulta != "" && a.FechaProxConsulta >= today
	})
	atendidos := map[int64]bool{}
	for _, a := range propios {
		atendidos[a.Cliente] = true
	}

	base := role.BasePath(role.Nutricionista)
	view := dashboardView{
		Greeting: "Hola, " + sess.DisplayName(),
		Cards: []dashCard{
			{Title: "Antecedentes registrados", Value: strconv.Itoa(len(propios)), Link: base + "/antecedentes", Icon: "clipboard"},
			{Title: "Clientes atendidos", Value: strconv.Itoa(len(atendidos)) + " / " + strconv.Itoa(len(clientes)), Link: base + "/clientes", Icon: "users"},
			{Title: "Próximas consultas", Value: strconv.Itoa(len(proximas)), Link: base + "/antecedentes?sort=cliente", Icon: "calendar"},
		},
		ListTitle: "Próximas consultas",
	}
	for _, a := range proximas {
		view.List = append(view.List, field{Label: a.ClienteDisplay(), Value: a.FechaProxConsulta})
	}
	s.render(w, r, http.StatusOK, "dashboard.html", page{Title: "Dashboard", Data: view})
}

// misHorarios returns the schedules of the disciplines assigned to the calling instructor.
func (s *Server) misHorarios(ctx context.Context) (disciplina.Asignadas, []horario.Horario, error) {
	var (
		asignadas disciplina.Asignadas
		todos     []horario.Horario
	)
	err := crud.LoadAll(ctx,
		crud.Into(&asignadas, s.api.MisDisciplinas),
		crud.Into(&todos, func(ctx context.Context) ([]horario.Horario, error) { return s.api.Horarios.List(ctx, nil) }),
	)
	if err != nil {
		return disciplina.Asignadas{}, nil, err
	}
	return asignadas, horario.DeDisciplinas(todos, asignadas.IDs()), nil
}

func (s *Server) registerInstructor(mux *http.ServeMux) {
	guard := middleware.RequireRole(s.metrics, role.Instructor)
	base := role.BasePath(role.Instructor)
	mux.Handle("GET "+base+"/dashboard", guard(http.HandlerFunc(s.handleInstructorDashboard)))

	(&resourcePage[disciplina.Disciplina, struct{}]{
		s: s, title: "Mis disciplinas", singular: "disciplina", base: base + "/disciplinas",
		fetch: func(ctx context.Context, _ middleware.Session) ([]disciplina.Disciplina, error) {
			a, err := s.api.MisDisciplinas(ctx)
			return a.Disciplinas, err
		},
		columns: disciplinaColumns,
		search:  disciplinaSearch,
	}).register(mux, guard)

	(&resourcePage[horario.Horario, struct{}]{
		s: s, title: "Mis horarios", singular: "horario", base: base + "/horarios",
		fetch: func(ctx context.Context, _ middleware.Session) ([]horario.Horario, error) {
			_, hs, err := s.misHorarios(ctx)
			return hs, err
		},
		columns: horarioColumns,
		search:  horarioSearch,
		filters: horarioFilters,
	}).register(mux, guard)
}

func (s *Server) handleInstructorDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	asignadas, hs, err := s.misHorarios(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	hoy := horario.DiaDe(s.now())
	deHoy := crud.Where(hs, func(h horario.Horario) bool { return h.Dia == hoy })

	base := role.BasePath(role.Instructor)
	view := dashboardView{
		Greeting: "Hola, " + sess.DisplayName(),
		Cards: []dashCard{
			{Title: "Disciplinas asignadas", Value: strconv.Itoa(len(asignadas.Disciplinas)), Link: base + "/disciplinas", Icon: "clipboard"},
			{Title: "Horarios semanales", Value: strconv.Itoa(len(hs)), Link: base + "/horarios", Icon: "calendar"},
			{Title: "Clases hoy", Value: strconv.Itoa(len(deHoy)), Link: base + "/horarios?dia=" + url.QueryEscape(hoy), Icon: "calendar-check"},
		},
		ListTitle: "Clases de hoy",
	}
	for _, h := range deHoy {
		view.List = append(view.List, field{Label: h.DisciplinaNombre, Value: horario.ShortTime(h.HoraIni) + " - " + horario.ShortTime(h.HoraFin) + ", " + h.SalaNombre})
	}
	s.render(w, r, http.StatusOK, "dashboard.html", page{Title: "Dashboard", Data: view})
}
