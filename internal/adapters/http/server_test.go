package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"gymfront/internal/adapters/backend"
	"gymfront/internal/adapters/email"
	"gymfront/internal/adapters/http/middleware"
	sessionStore "gymfront/internal/adapters/storage/session"
	"gymfront/internal/config"
	"gymfront/internal/domain/role"
	"gymfront/internal/domain/session"
)

// fakeBackend is an in-process stand-in for the REST backend. Unregistered
// routes answer 404 the way the real backend does.
type fakeBackend struct {
	mu     sync.Mutex
	mux    *http.ServeMux
	calls  []string
	bodies map[string][]byte
}

func newFakeBackend() *fakeBackend {
	f := &fakeBackend{mux: http.NewServeMux(), bodies: map[string][]byte{}}
	f.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No encontrado."})
	})
	return f
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, call)
	if len(body) > 0 {
		f.bodies[call] = body
	}
	f.mu.Unlock()
	f.mux.ServeHTTP(w, r)
}

// reply registers a fixed JSON answer for pattern, e.g. "GET /horarios/{$}".
func (f *fakeBackend) reply(pattern string, status int, body any) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if status == http.StatusNoContent {
			w.WriteHeader(status)
			return
		}
		writeJSON(w, status, body)
	})
}

func (f *fakeBackend) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeBackend) body(call string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var m map[string]any
	_ = json.Unmarshal(f.bodies[call], &m)
	return m
}

type testEnv struct {
	srv     *Server
	handler http.Handler
	store   *sessionStore.MemoryStore
	backend *fakeBackend
	sender  *email.NoopSender
}

func newTestEnv(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()
	fb := newFakeBackend()
	ts := httptest.NewServer(fb)
	t.Cleanup(ts.Close)

	store := sessionStore.NewMemoryStore()
	sender := email.NewNoopSender()
	o := Options{
		API:      backend.NewAPI(backend.New(backend.Options{BaseURL: ts.URL, Timeout: 2 * time.Second})),
		Sessions: store,
		Sender:   sender,
		Config: config.Config{
			Env:       "development",
			PublicURL: "http://gym.test",
			CSRFKey:   []byte("0123456789abcdef0123456789abcdef"),
			RateLimit: 1000,
		},
	}
	for _, fn := range opts {
		fn(&o)
	}
	s, err := NewServer(o)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(s.Close)

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return &testEnv{
		srv:     s,
		handler: middleware.Auth(store, nil)(mux),
		store:   store,
		backend: fb,
		sender:  sender,
	}
}

// login stores a session and returns its cookie.
func (e *testEnv) login(t *testing.T, r role.Role, userID, profileID int64) *http.Cookie {
	t.Helper()
	now := time.Now()
	token, err := e.store.Create(t.Context(), session.Session{
		UserID:      userID,
		ProfileID:   profileID,
		Username:    "user" + idText(userID),
		Email:       "user@example.com",
		Nombre:      "Usuario Prueba",
		Role:        r,
		AccessToken: "access-" + idText(userID),
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create session: %v", err)
	}
	return &http.Cookie{Name: middleware.SessionCookieName, Value: token}
}

func (e *testEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func assertContains(t *testing.T, rec *httptest.ResponseRecorder, subs ...string) {
	t.Helper()
	body := rec.Body.String()
	for _, s := range subs {
		if !strings.Contains(body, s) {
			t.Errorf("body does not contain %q", s)
		}
	}
}

func assertNotContains(t *testing.T, rec *httptest.ResponseRecorder, subs ...string) {
	t.Helper()
	body := rec.Body.String()
	for _, s := range subs {
		if strings.Contains(body, s) {
			t.Errorf("body unexpectedly contains %q", s)
		}
	}
}
