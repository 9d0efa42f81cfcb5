package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"gymfront/internal/adapters/http/middleware"
	"gymfront/internal/domain/horario"
	"gymfront/internal/domain/menu"
	"gymfront/internal/domain/role"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// notices maps the ok query parameter set after a successful mutation to its message.
var notices = map[string]string{
	"creado":      "Registro creado correctamente.",
	"actualizado": "Registro actualizado correctamente.",
	"eliminado":   "Registro eliminado correctamente.",
	"reservada":   "Reserva registrada. Te enviamos un comprobante por correo.",
	"cancelada":   "La reserva fue cancelada.",
}

// page is the data every template receives. Data carries the page-specific view.
type page struct {
	Title     string
	Session   *middleware.Session
	Menu      []menu.Item
	Sidebar   menu.Sidebar
	ToggleURL string
	CloseURL  string
	Path      string
	Notice    string
	Error     string
	Data      any
}

// funcs returns the template functions. csrfToken is bound per request; the
// placeholder only lets templates parse at startup.
func funcs(r *http.Request) template.FuncMap {
	token := func() string { return "" }
	if r != nil {
		token = func() string { return csrf.Token(r) }
	}
	return template.FuncMap{
		"csrfToken":      token,
		"csrfField":      func() string { return middleware.CSRFFieldName },
		"renderMarkdown": renderMarkdown,
		"add":            func(a, b int) int { return a + b },
		"sub":            func(a, b int) int { return a - b },
		"pageQuery": func(q url.Values, n int) template.URL {
			return template.URL(queryWithPage(q, n))
		},
		"landing": role.LandingPath,
		"dict": func(kv ...any) map[string]any {
			m := make(map[string]any, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				if k, ok := kv[i].(string); ok {
					m[k] = kv[i+1]
				}
			}
			return m
		},
	}
}

func queryWithPage(q url.Values, n int) string {
	out := url.Values{}
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	out.Set("page", strconv.Itoa(n))
	return out.Encode()
}

// parsePages parses every page together with the layout.
// Files whose name starts with "_" are partials shared by all pages.
func parsePages() (map[string]*template.Template, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	var partials []string
	for _, n := range names {
		if strings.HasPrefix(path.Base(n), "_") {
			partials = append(partials, n)
		}
	}

	pages := make(map[string]*template.Template)
	for _, n := range names {
		base := path.Base(n)
		if base == "layout.html" || strings.HasPrefix(base, "_") {
			continue
		}
		files := append([]string{"templates/layout.html"}, partials...)
		files = append(files, n)
		tpl, err := template.New("layout.html").Funcs(funcs(nil)).ParseFS(templateFS, files...)
		if err != nil {
			return nil, err
		}
		pages[base] = tpl
	}
	if len(pages) == 0 {
		return nil, errors.New("no page templates found")
	}
	return pages, nil
}

// render executes a page inside the layout.
// POST: Session, menu and notice are filled from the request
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	base, ok := s.pages[name]
	if !ok {
		internalError(w, errors.New("unknown template "+name))
		return
	}
	tpl, err := base.Clone()
	if err != nil {
		internalError(w, err)
		return
	}
	tpl.Funcs(funcs(r))

	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		p.Session = &sess
		p.Menu = menu.ForRole(sess.Role)
	}
	p.Path = r.URL.Path
	p.Sidebar = menu.SidebarFromQuery(r.URL.Query())
	p.ToggleURL = p.Sidebar.ToggleURL(r.URL)
	p.CloseURL = p.Sidebar.CloseURL(r.URL)
	if p.Notice == "" {
		p.Notice = notices[r.URL.Query().Get("ok")]
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		slog.Error("render_error", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
