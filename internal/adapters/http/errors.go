package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gymfront/internal/adapters/backend"
)

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// statusFor maps a failed backend call to the status of the page that reports it.
func statusFor(err error) int {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError
	}
	switch apiErr.Kind {
	case backend.KindValidation:
		return http.StatusUnprocessableEntity
	case backend.KindForbidden:
		return http.StatusForbidden
	case backend.KindNotFound:
		return http.StatusNotFound
	case backend.KindGeneric:
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusBadGateway
}

// rejected reports whether the backend refused the session token. When it did,
// the session is torn down and the browser sent to /login.
func (s *Server) rejected(w http.ResponseWriter, r *http.Request, err error) bool {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != backend.KindUnauthorized {
		return false
	}
	s.teardown(w, r, "backend_401")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

// fail renders the error page for a read that could not complete.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		slog.Info("request_cancelled", "path", r.URL.Path)
		return
	}
	if s.rejected(w, r, err) {
		return
	}
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		internalError(w, err)
		return
	}
	slog.Warn("backend_error", "path", r.URL.Path, "kind", apiErr.Kind.String(), "status", apiErr.Status, "error", apiErr.Err)
	s.render(w, r, statusFor(err), "error.html", page{Title: "Error", Error: apiErr.Message})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "error.html", page{Title: "No encontrado", Error: backend.MsgNotFound})
}
