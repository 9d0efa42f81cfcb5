package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"gymfront/internal/adapters/http/middleware"
	"gymfront/internal/application/crud"
	"gymfront/internal/application/orchestrators"
	"gymfront/internal/domain/cliente"
	"gymfront/internal/domain/role"
	"gymfront/internal/domain/suscripcion"
	"gymfront/internal/domain/usuario"
)

type loginView struct {
	Username string
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "welcome.html", page{Title: "Bienvenido"})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", page{Title: "Iniciar sesión", Data: loginView{}})
}

// handleLogin exchanges credentials for a session.
// POST: On success the session cookie is set and the browser goes to the role's landing page
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.LoginInput{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	sess, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{API: s.api, Now: s.now})
	if err != nil {
		status := http.StatusUnauthorized
		msg := err.Error()
		switch {
		case errors.Is(err, orchestrators.ErrMissingCredentials):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, orchestrators.ErrInvalidCredentials):
			s.metrics.AuthEvent("login_failed")
		case errors.Is(err, orchestrators.ErrRoleNotSupported):
			status = http.StatusForbidden
			s.metrics.AuthEvent("login_blocked")
		default:
			status = statusFor(err)
			msg = crud.Message(err)
			slog.Warn("login_error", "username", input.Username, "error", err)
		}
		p := page{Title: "Iniciar sesión", Error: upperFirst(msg), Data: loginView{Username: input.Username}}
		s.render(w, r, status, "login.html", p)
		return
	}

	token, err := s.sessions.Create(r.Context(), sess)
	if err != nil {
		internalError(w, err)
		return
	}
	s.metrics.AuthEvent("login_success")
	middleware.SetSessionCookie(w, token, sess.ExpiresAt, s.secure)
	http.Redirect(w, r, role.LandingPath(sess.Role), http.StatusSeeOther)
}

// upperFirst turns a Go error string into a sentence for the banner.
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	out := string(r)
	if last := r[len(r)-1]; last != '.' && last != '!' && last != '?' {
		out += "."
	}
	return out
}

// handleLogout handles POST /logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		if err := s.sessions.Delete(r.Context(), sess.Token); err != nil {
			slog.Error("session_store_error", "error", err, "path", r.URL.Path)
		}
		slog.Info("auth_event", "event", "logout", "user_id", sess.UserID)
		s.metrics.AuthEvent("logout")
	}
	middleware.ClearSessionCookie(w, s.secure)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusForbidden, "unauthorized.html", page{Title: "Acceso denegado"})
}

// field is one label/value line of a read-only card.
type field struct {
	Label string
	Value string
}

type perfilView struct {
	Initial string
	Fields  []field
	Extra   []field
}

func usuarioFields(u usuario.Usuario) []field {
	return []field{
		{"Usuario", u.Username},
		{"Nombre", u.NombreCompleto()},
		{"Correo", u.Email},
		{"Rol", u.Rol},
		{"Sexo", u.Sexo},
		{"Dirección", u.Direccion},
		{"Fecha de nacimiento", u.FechaNacimiento},
	}
}

func initial(s string) string {
	for _, r := range s {
		return string(r)
	}
	return "?"
}

// handlePerfil shows the account behind the session.
func (s *Server) handlePerfil(w http.ResponseWriter, r *http.Request) {
	me, err := s.api.Me(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view := perfilView{Initial: initial(me.NombreCompleto()), Fields: usuarioFields(me)}
	s.render(w, r, http.StatusOK, "perfil.html", page{Title: "Perfil", Data: view})
}

// handleClientePerfil shows the account, the membership and the current subscription.
func (s *Server) handleClientePerfil(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	var (
		me     usuario.Usuario
		cli    cliente.Cliente
		planes []suscripcion.Suscripcion
	)
	key := strconv.FormatInt(sess.ProfileID, 10)
	err := crud.LoadAll(r.Context(),
		crud.Into(&me, s.api.Me),
		crud.Into(&cli, func(ctx context.Context) (cliente.Cliente, error) { return s.api.Clientes.Get(ctx, key) }),
		crud.Into(&planes, func(ctx context.Context) ([]suscripcion.Suscripcion, error) {
			return s.api.Suscripciones.List(ctx, nil)
		}),
	)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	plan := cli.SuscripcionActualNombre
	if plan == "" && cli.SuscripcionActual != nil {
		for _, p := range planes {
			if p.ID == *cli.SuscripcionActual {
				plan = p.Label()
			}
		}
	}
	if plan == "" {
		plan = "Sin suscripción"
	}
	estado := "Vencida"
	if cli.MembresiaVigente(s.now()) {
		estado = "Vigente"
	}
	view := perfilView{
		Initial: initial(me.NombreCompleto()),
		Fields:  usuarioFields(me),
		Extra: []field{
			{"Suscripción actual", plan},
			{"Inicio de membresía", cli.FechaIniMem},
			{"Fin de membresía", cli.FechaFinMem},
			{"Estado de membresía", estado},
		},
	}
	s.render(w, r, http.StatusOK, "perfil.html", page{Title: "Mi perfil", Data: view})
}
