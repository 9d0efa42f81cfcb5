package browser_test

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/playwright-community/playwright-go"

	"gymfront/internal/adapters/backend"
	"gymfront/internal/adapters/email"
	web "gymfront/internal/adapters/http"
	sessionStore "gymfront/internal/adapters/storage/session"
	"gymfront/internal/config"
)

const testPassword = "secreto123"

type testUser struct {
	ID       int64
	Username string
	Rol      string
}

var testUsers = map[string]testUser{
	"admin": {ID: 1, Username: "admin", Rol: "Administrador"},
	"carla": {ID: 3, Username: "carla", Rol: "Instructor"},
	"nora":  {ID: 4, Username: "nora", Rol: "Nutricionista"},
	"ana":   {ID: 7, Username: "ana", Rol: "Cliente"},
}

// gymBackend is an in-memory REST backend with just enough behaviour for the browser flows.
type gymBackend struct {
	mu           sync.Mutex
	horarios     []map[string]any
	reservas     []map[string]any
	antecedentes []map[string]any
	nextID       int64
	checkoutURL  string
}

func newGymBackend() *gymBackend {
	return &gymBackend{
		nextID: 100,
		horarios: []map[string]any{
			{"id": 1, "disciplina": 5, "disciplina_nombre": "Yoga", "sala": 1, "sala_nombre": "Sala A", "instructor": 3, "instructor_username": "carla", "dia": "Lunes", "hora_ini": "08:00:00", "hora_fin": "09:00:00", "cupo": 4},
			{"id": 2, "disciplina": 6, "disciplina_nombre": "Spinning", "sala": 1, "sala_nombre": "Sala A", "instructor": 3, "instructor_username": "carla", "dia": "Martes", "hora_ini": "18:00:00", "hora_fin": "19:00:00", "cupo": 0},
		},
	}
}

func bearerUser(r *http.Request) (testUser, bool) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return testUser{}, false
	}
	name, _ := claims["username"].(string)
	u, ok := testUsers[name]
	return u, ok
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *gymBackend) handler() http.Handler {
	mux := http.NewServeMux()
	static := func(pattern string, v any) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) { reply(w, http.StatusOK, v) })
	}

	mux.HandleFunc("POST /token/", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if _, ok := testUsers[creds.Username]; !ok || creds.Password != testPassword {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"username": creds.Username,
			"exp":      time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("browser-test"))
		reply(w, http.StatusOK, map[string]string{"access": tok, "refresh": "r"})
	})
	mux.HandleFunc("GET /usuarios/me/", func(w http.ResponseWriter, r *http.Request) {
		u, ok := bearerUser(r)
		if !ok {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username, "email": u.Username + "@gym.test", "nombre": strings.ToUpper(u.Username[:1]) + u.Username[1:], "rol": u.Rol})
	})

	static("GET /usuarios/{$}", []map[string]any{
		{"id": 1, "username": "admin", "email": "admin@gym.test", "rol": "Administrador"},
		{"id": 7, "username": "ana", "email": "ana@gym.test", "rol": "Cliente"},
	})
	static("GET /clientes/{$}", []map[string]any{{"id": 1, "usuario": 7, "usuario_username": "ana", "email": "ana@gym.test"}})
	static("GET /clientes/7/", map[string]any{"id": 1, "usuario": 7, "usuario_username": "ana"})
	static("GET /instructores/{$}", []map[string]any{{"usuario": 3, "usuario_username": "carla"}})
	static("GET /instructores/3/", map[string]any{"usuario": 3, "usuario_username": "carla"})
	static("GET /nutricionistas/{$}", []map[string]any{{"usuario": 4, "usuario_username": "nora"}})
	static("GET /nutricionistas/4/", map[string]any{"usuario": 4, "usuario_username": "nora"})
	static("GET /salas/{$}", []map[string]any{{"id": 1, "nombre": "Sala A", "capacidad": 30}})
	static("GET /disciplinas/{$}", []map[string]any{
		{"id": 5, "nombre": "Yoga", "cupo": 20, "instructor": 3},
		{"id": 6, "nombre": "Spinning", "cupo": 15, "instructor": 3},
	})
	static("GET /disciplinas/mis-disciplinas/", map[string]any{
		"count": 2, "instructor": "carla",
		"disciplinas": []map[string]any{{"id": 5, "nombre": "Yoga", "cupo": 20}, {"id": 6, "nombre": "Spinning", "cupo": 15}},
	})
	static("GET /suscripciones/{$}", []map[string]any{{"id": 3, "nombre": "Mensual", "precio": "450.00"}})
	static("GET /promociones/{$}", []map[string]any{})
	static("GET /suscripciones-clientes/mis-suscripciones", []map[string]any{})

	mux.HandleFunc("GET /horarios/{$}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		reply(w, http.StatusOK, b.horarios)
	})
	mux.HandleFunc("GET /horarios/{id}/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, h := range b.horarios {
			if fmt.Sprint(h["id"]) == r.PathValue("id") {
				reply(w, http.StatusOK, h)
				return
			}
		}
		reply(w, http.StatusNotFound, map[string]string{"detail": "No encontrado."})
	})

	mux.HandleFunc("GET /reservas/{$}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		reply(w, http.StatusOK, b.reservas)
	})
	mux.HandleFunc("POST /reservas/{$}", func(w http.ResponseWriter, r *http.Request) {
		u, _ := bearerUser(r)
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		res := map[string]any{"id": b.nextID, "cliente": u.ID, "horario": in["horario"], "estado": "Pendiente", "horario_disciplina_nombre": "Yoga", "horario_dia": "Lunes", "horario_hora_ini": "08:00:00"}
		b.reservas = append(b.reservas, res)
		reply(w, http.StatusCreated, res)
	})
	mux.HandleFunc("GET /reservas/{id}/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, res := range b.reservas {
			if fmt.Sprint(res["id"]) == r.PathValue("id") {
				reply(w, http.StatusOK, res)
				return
			}
		}
		reply(w, http.StatusNotFound, map[string]string{"detail": "No encontrado."})
	})
	mux.HandleFunc("PATCH /reservas/{id}/", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, res := range b.reservas {
			if fmt.Sprint(res["id"]) == r.PathValue("id") {
				res["estado"] = in["estado"]
				reply(w, http.StatusOK, res)
				return
			}
		}
		reply(w, http.StatusNotFound, map[string]string{"detail": "No encontrado."})
	})

	mux.HandleFunc("GET /antecedentes/{$}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		reply(w, http.StatusOK, b.antecedentes)
	})
	mux.HandleFunc("POST /antecedentes/{$}", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		in["id"] = b.nextID
		in["cliente_username"] = "ana"
		b.antecedentes = append(b.antecedentes, in)
		reply(w, http.StatusCreated, in)
	})

	mux.HandleFunc("POST /pagos/crear_sesion_stripe/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		reply(w, http.StatusOK, map[string]string{"url": b.checkoutURL})
	})
	mux.HandleFunc("GET /checkout/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<!doctype html><title>Checkout</title><h1>Hosted checkout</h1>")
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusNotFound, map[string]string{"detail": "No encontrado."})
	})
	return mux
}

// testApp holds the running front end, its fake backend and the Playwright handles.
type testApp struct {
	BaseURL string
	Backend *gymBackend
	Sender  *email.NoopSender
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// newTestApp starts the front end on a free port against an in-memory backend.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if os.Getenv("GYM_BROWSER_TESTS") == "" {
		t.Skip("set GYM_BROWSER_TESTS=1 to run browser tests")
	}

	gb := newGymBackend()
	api := httptest.NewServer(gb.handler())
	t.Cleanup(api.Close)
	gb.checkoutURL = api.URL + "/checkout/session"

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	baseURL := "http://" + listener.Addr().String()

	sender := email.NewNoopSender()
	s, err := web.NewServer(web.Options{
		API:      backend.NewAPI(backend.New(backend.Options{BaseURL: api.URL, Timeout: 5 * time.Second})),
		Sessions: sessionStore.NewMemoryStore(),
		Sender:   sender,
		Config: config.Config{
			Env:       "development",
			PublicURL: baseURL,
			CSRFKey:   []byte("0123456789abcdef0123456789abcdef"),
			RateLimit: 1000,
		},
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	srv := &http.Server{Handler: s.Handler()}
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		s.Close()
	})
	return &testApp{BaseURL: baseURL, Backend: gb, Sender: sender, Server: srv, PW: pw, Browser: browser}
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in through the form and waits for the role's landing page.
func (a *testApp) login(t *testing.T, page playwright.Page, username, landing string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=username]").Fill(username); err != nil {
		t.Fatalf("failed to fill username: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(testPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+landing, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login as %s did not land on %s: %v", username, landing, err)
	}
}

func (a *testApp) goTo(t *testing.T, page playwright.Page, path string) int {
	t.Helper()
	resp, err := page.Goto(a.BaseURL + path)
	if err != nil {
		t.Fatalf("failed to navigate to %s: %v", path, err)
	}
	return resp.Status()
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
