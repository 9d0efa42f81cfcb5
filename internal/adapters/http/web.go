// Package web serves the server-rendered pages of every role and the few JSON endpoints they use.
package web

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gymfront/internal/adapters/backend"
	"gymfront/internal/adapters/email"
	"gymfront/internal/adapters/http/middleware"
	"gymfront/internal/adapters/metrics"
	sessionStore "gymfront/internal/adapters/storage/session"
	"gymfront/internal/config"
	"gymfront/internal/domain/role"
)

// HealthCheck is one readiness check reported by /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Options holds the dependencies of the web server.
type Options struct {
	API      *backend.API
	Sessions sessionStore.Store
	Metrics  *metrics.Collector
	Sender   email.Sender
	Config   config.Config
	Checks   []HealthCheck
	// Now overrides the clock; tests pin it.
	Now func() time.Time
}

// Server owns the routes and their shared dependencies.
type Server struct {
	api      *backend.API
	sessions sessionStore.Store
	metrics  *metrics.Collector
	sender   email.Sender
	cfg      config.Config
	checks   []HealthCheck
	limiter  *middleware.RateLimiter
	pages    map[string]*template.Template
	now      func() time.Time
	started  time.Time
	secure   bool

	// payOrigins re-renders the catalog a pay action came from, with a banner.
	payOrigins map[string]func(w http.ResponseWriter, r *http.Request, banner string, status int)
}

// NewServer parses the templates and binds the dependencies.
// PRE: opts.API and opts.Sessions are non-nil
// POST: Returns an error when any template fails to parse
func NewServer(opts Options) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sender := opts.Sender
	if sender == nil {
		sender = email.NewNoopSender()
	}
	rate := opts.Config.RateLimit
	if rate <= 0 {
		rate = 20
	}
	return &Server{
		api:        opts.API,
		sessions:   opts.Sessions,
		metrics:    opts.Metrics,
		sender:     sender,
		cfg:        opts.Config,
		checks:     opts.Checks,
		limiter:    middleware.NewRateLimiter(rate, time.Second),
		pages:      pages,
		now:        now,
		started:    now(),
		secure:     opts.Config.Production(),
		payOrigins: map[string]func(http.ResponseWriter, *http.Request, string, int){},
	}, nil
}

// Close stops background work started by NewServer.
func (s *Server) Close() {
	s.limiter.Stop()
}

// Handler builds the mux and wraps it in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	s.metrics.KnownRoutes(func(method, path string) string {
		_, pattern := mux.Handler(&http.Request{Method: method, URL: &url.URL{Path: path}})
		if _, route, ok := strings.Cut(pattern, " "); ok {
			return route
		}
		return pattern
	})

	threshold := time.Duration(s.cfg.SlowRequestMs) * time.Millisecond
	if threshold <= 0 {
		threshold = middleware.DefaultSlowRequest
	}

	// Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(s.cfg.CSRFKey, s.secure, trustedOrigins(s.cfg.PublicURL)),
		middleware.Auth(s.sessions, s.metrics),
		middleware.RateLimit(s.limiter),
		middleware.Timing(s.metrics, threshold),
	)
}

// trustedOrigins lets the public host post forms when the app sits behind a proxy.
func trustedOrigins(publicURL string) []string {
	u, err := url.Parse(publicURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	public := func(h http.HandlerFunc) http.Handler { return middleware.PublicOnly(h) }

	mux.Handle("GET /{$}", public(s.handleWelcome))
	mux.Handle("GET /login", public(s.handleLoginForm))
	mux.Handle("POST /login", public(s.handleLogin))
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /unauthorized", s.handleUnauthorized)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	staff := middleware.RequireRole(s.metrics, role.Administrador, role.Nutricionista)
	mux.Handle("GET /api/imc", staff(http.HandlerFunc(s.handleIMC)))

	anyRole := middleware.RequireRole(s.metrics)
	mux.Handle("GET /perfil", anyRole(http.HandlerFunc(s.handlePerfil)))

	s.registerAdmin(mux)
	s.registerCliente(mux)
	s.registerNutricionista(mux)
	s.registerInstructor(mux)
}

// teardown ends the current session after the backend rejected its token.
func (s *Server) teardown(w http.ResponseWriter, r *http.Request, reason string) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		if err := s.sessions.Delete(r.Context(), sess.Token); err != nil {
			slog.Error("session_store_error", "error", err, "path", r.URL.Path)
		}
		slog.Info("auth_event", "event", "session_teardown", "reason", reason, "user_id", sess.UserID)
	}
	s.metrics.AuthEvent("session_teardown")
	middleware.ClearSessionCookie(w, s.secure)
}
