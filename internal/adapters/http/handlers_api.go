package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"gymfront/internal/domain/antecedente"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err)
	}
}

type imcResponse struct {
	IMC   float64 `json:"imc"`
	Texto string  `json:"texto"`
}

type apiError struct {
	Error string `json:"error"`
}

// handleIMC previews the BMI for the antecedent form.
// GET /api/imc?peso=70&altura=1.75
func (s *Server) handleIMC(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	peso, ok1 := antecedente.ParseMeasure(q.Get("peso"))
	altura, ok2 := antecedente.ParseMeasure(q.Get("altura"))
	if !ok1 || !ok2 {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Ingresa peso y altura."})
		return
	}
	imc, ok := antecedente.ComputeIMC(peso, altura)
	if !ok {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "La altura debe ser mayor que cero."})
		return
	}
	writeJSON(w, http.StatusOK, imcResponse{IMC: imc, Texto: antecedente.FormatIMC(imc)})
}

type healthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]healthCheck `json:"checks"`
}

// handleHealth reports readiness: the session store must answer and the backend breaker must not be open.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:    "UP",
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Uptime:    s.now().Sub(s.started).Round(time.Second).String(),
		Checks:    map[string]healthCheck{},
	}
	status := http.StatusOK
	for _, c := range s.checks {
		if err := c.Ping(ctx); err != nil {
			slog.Warn("health_check_failed", "check", c.Name, "error", err)
			resp.Checks[c.Name] = healthCheck{Status: "DOWN", Message: "no responde"}
			resp.Status = "DOWN"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[c.Name] = healthCheck{Status: "UP"}
	}

	breaker := s.api.Client().BreakerState()
	if breaker == "open" {
		resp.Checks["backend"] = healthCheck{Status: "DEGRADED", Message: "circuit breaker open"}
	} else {
		resp.Checks["backend"] = healthCheck{Status: "UP", Message: "breaker " + breaker}
	}
	writeJSON(w, status, resp)
}
