package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"gymfront/internal/domain/disciplina"
	"gymfront/internal/domain/pago"
	"gymfront/internal/domain/reserva"
)

func newTestAPI(t *testing.T, h http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAPI(New(Options{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second}))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// TestClient_SendsBearerToken verifies the token in ctx reaches the backend.
func TestClient_SendsBearerToken(t *testing.T) {
	var got string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []any{})
	})

	ctx := WithToken(context.Background(), "abc")
	if _, err := api.Disciplinas.List(ctx, nil); err != nil {
		t.Fatalf("List: %v", err)
	}
	if got != "Bearer abc" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer abc")
	}
}

// TestClient_LoginOmitsBearer verifies the token endpoint is called anonymously.
func TestClient_LoginOmitsBearer(t *testing.T) {
	var auth, path string
	var body map[string]string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, TokenPair{Access: "a", Refresh: "r"})
	})

	ctx := WithToken(context.Background(), "stale")
	pair, err := api.Login(ctx, "ana", "secreto123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if auth != "" {
		t.Errorf("Authorization = %q, want empty", auth)
	}
	if path != "/api/token/" {
		t.Errorf("path = %q, want /api/token/", path)
	}
	if body["username"] != "ana" || body["password"] != "secreto123" {
		t.Errorf("body = %v", body)
	}
	if pair.Access != "a" {
		t.Errorf("Access = %q, want a", pair.Access)
	}
}

// TestCollection_ListShapes verifies bare arrays and page envelopes decode the same way.
func TestCollection_ListShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
		wantErr bool
	}{
		{"array", `[{"id":1,"nombre":"Yoga"},{"id":2,"nombre":"Box"}]`, 2, false},
		{"envelope", `{"count":1,"results":[{"id":1,"nombre":"Yoga"}]}`, 1, false},
		{"empty envelope", `{"results":null}`, 0, false},
		{"object", `{"id":1}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.payload))
			})
			got, err := api.Disciplinas.List(context.Background(), nil)
			if tt.wantErr {
				if !errors.Is(err, ErrUnexpectedList) {
					t.Fatalf("err = %v, want ErrUnexpectedList", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if got == nil {
				t.Fatal("List returned nil slice")
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

// TestCollection_ListFollowsNext verifies envelope pages are joined through their next links.
func TestCollection_ListFollowsNext(t *testing.T) {
	var queries []string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		switch r.URL.Query().Get("page") {
		case "":
			writeJSON(w, http.StatusOK, map[string]any{
				"count": 3, "next": "http://" + r.Host + "/api/disciplinas/?page=2&sala=1",
				"results": []map[string]any{{"id": 1, "nombre": "Yoga"}, {"id": 2, "nombre": "Box"}},
			})
		default:
			writeJSON(w, http.StatusOK, map[string]any{
				"count": 3, "next": nil,
				"results": []map[string]any{{"id": 3, "nombre": "Pilates"}},
			})
		}
	})

	got, err := api.Disciplinas.List(context.Background(), url.Values{"sala": {"1"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 || got[2].Nombre != "Pilates" {
		t.Errorf("items = %+v", got)
	}
	if len(queries) != 2 || queries[0] != "sala=1" || queries[1] != "page=2&sala=1" {
		t.Errorf("queries = %v", queries)
	}
}

// TestCollection_ListStopsOnRepeatedNext verifies a next link pointing back does not loop.
func TestCollection_ListStopsOnRepeatedNext(t *testing.T) {
	var calls atomic.Int32
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{
			"next":    "http://" + r.Host + "/api/disciplinas/?page=2",
			"results": []map[string]any{{"id": 1, "nombre": "Yoga"}},
		})
	})

	got, err := api.Disciplinas.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if calls.Load() != 2 || len(got) != 2 {
		t.Errorf("calls = %d items = %d, want 2 and 2", calls.Load(), len(got))
	}
}

// TestCollection_Verbs verifies the method and path each verb uses.
func TestCollection_Verbs(t *testing.T) {
	type call struct{ method, path, query string }
	var calls []call
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path, r.URL.RawQuery})
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "estado": "Cancelada"})
	})
	ctx := context.Background()

	api.Reservas.List(ctx, url.Values{"cliente": {"3"}})
	api.Reservas.Get(ctx, "7")
	api.Reservas.Create(ctx, reserva.Input{Horario: 4})
	api.Reservas.Patch(ctx, "7", reserva.CancelPatch())
	api.Reservas.Delete(ctx, "7")

	want := []call{
		{http.MethodGet, "/api/reservas/", "cliente=3"},
		{http.MethodGet, "/api/reservas/7/", ""},
		{http.MethodPost, "/api/reservas/", ""},
		{http.MethodPatch, "/api/reservas/7/", ""},
		{http.MethodDelete, "/api/reservas/7/", ""},
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

// TestClient_NormalizesValidationErrors verifies field errors survive the trip.
func TestClient_NormalizesValidationErrors(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"nombre": []string{"Ya existe."}})
	})

	_, err := api.Disciplinas.Create(context.Background(), disciplina.Input{Nombre: "Yoga", Cupo: 10})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Kind != KindValidation {
		t.Errorf("Kind = %v, want validation", apiErr.Kind)
	}
	if got := apiErr.Field("nombre"); len(got) != 1 || got[0] != "Ya existe." {
		t.Errorf("Field(nombre) = %v", got)
	}
}

// TestClient_UnreachableBackend verifies transport failures carry the unavailable message.
func TestClient_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(Options{BaseURL: base, Timeout: time.Second})
	err := c.Do(context.Background(), http.MethodGet, "/horarios/", nil, nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Kind != KindTransport || apiErr.Message != MsgUnavailable {
		t.Errorf("got kind=%v message=%q", apiErr.Kind, apiErr.Message)
	}
}

// TestClient_BreakerOpensOnServerErrors verifies three 5xx answers stop further calls.
func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Breaker: &gobreaker.Settings{
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 3 },
	}})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		c.Do(ctx, http.MethodGet, "/salas/", nil, nil, nil)
	}
	err := c.Do(ctx, http.MethodGet, "/salas/", nil, nil, nil)

	if hits.Load() != 3 {
		t.Errorf("backend hits = %d, want 3", hits.Load())
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindTransport {
		t.Fatalf("err = %v, want transport APIError", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err does not wrap ErrOpenState: %v", err)
	}
}

// TestClient_ClientErrorsDoNotTripBreaker verifies 4xx answers leave the breaker closed.
func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No encontrado."})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	for i := 0; i < 5; i++ {
		c.Do(context.Background(), http.MethodGet, "/salas/9/", nil, nil, nil)
	}
	if hits.Load() != 5 {
		t.Errorf("backend hits = %d, want 5", hits.Load())
	}
}

// TestAPI_CrearSesionPago verifies the checkout payload shape.
func TestAPI_CrearSesionPago(t *testing.T) {
	var body map[string]any
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pagos/crear_sesion_stripe/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]string{"url": "https://checkout.example/s/1"})
	})

	sess, err := api.CrearSesionPago(context.Background(), pago.CheckoutRequest{
		TipoObjeto: pago.TipoSuscripcion,
		ObjetoID:   3,
		SuccessURL: "http://front/cliente/suscripcion-pago-exitoso",
		CancelURL:  "http://front/cliente/suscripcion-pago-cancelado",
	})
	if err != nil {
		t.Fatalf("CrearSesionPago: %v", err)
	}
	if sess.URL != "https://checkout.example/s/1" {
		t.Errorf("URL = %q", sess.URL)
	}
	if body["tipo_objeto"] != "suscripcion" || body["objeto_id"] != float64(3) {
		t.Errorf("body = %v", body)
	}
}

// TestAPI_MisSuscripciones verifies an empty answer becomes an empty slice.
func TestAPI_MisSuscripciones(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	})
	got, err := api.MisSuscripciones(context.Background())
	if err != nil {
		t.Fatalf("MisSuscripciones: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty slice", got)
	}
}

func fakeJWT(claims map[string]any) string {
	enc := base64.RawURLEncoding
	head := enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, _ := json.Marshal(claims)
	return head + "." + enc.EncodeToString(payload) + "." + enc.EncodeToString([]byte("sig"))
}

// TestTokenExpiry verifies the exp claim is read without a signing key.
func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := TokenExpiry(fakeJWT(map[string]any{"exp": exp.Unix(), "user_id": 4}))
	if err != nil {
		t.Fatalf("TokenExpiry: %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("expiry = %v, want %v", got, exp)
	}

	got, err = TokenExpiry(fakeJWT(map[string]any{"user_id": 4}))
	if err != nil || !got.IsZero() {
		t.Errorf("no exp: got %v, %v; want zero time", got, err)
	}

	if _, err := TokenExpiry("not-a-token"); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("err = %v, want ErrMalformedToken", err)
	}
}
