package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gymfront/internal/adapters/backend"
	"gymfront/internal/adapters/metrics"
	sessionStore "gymfront/internal/adapters/storage/session"
	"gymfront/internal/domain/role"
	"gymfront/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "gymfront_session"

// Session is the identity of the current request: the stored session and the token that found it.
type Session struct {
	Token string
	session.Session
}

// Auth returns middleware that restores the session from the cookie and places it,
// together with the backend bearer token, in the request context.
// It does NOT block unauthenticated requests; use RequireRole for that.
func Auth(store sessionStore.Store, m *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := store.Get(r.Context(), cookie.Value)
			switch {
			case errors.Is(err, session.ErrNotFound):
				slog.Info("auth_event", "event", "session_expired", "path", r.URL.Path)
				m.AuthEvent("session_expired")
				ClearSessionCookie(w, r.TLS != nil)
			case err != nil:
				slog.Error("session_store_error", "error", err, "path", r.URL.Path)
			default:
				r = r.WithContext(ContextWithSession(r.Context(), Session{Token: cookie.Value, Session: sess}))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole returns middleware that admits only sessions whose role is in roles.
// An empty roles list admits any logged-in user.
// POST: No session redirects to /login; a role outside the set redirects to /unauthorized
func RequireRole(m *metrics.Collector, roles ...role.Role) func(http.Handler) http.Handler {
	allowed := role.NewSet(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSessionFromContext(r.Context())
			if !ok {
				m.AuthEvent("guard_login")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if !allowed.Allows(sess.Role) {
				slog.Info("auth_event", "event", "guard_denied", "user_id", sess.UserID, "role", sess.Role.String(), "path", r.URL.Path)
				m.AuthEvent("guard_denied")
				http.Redirect(w, r, "/unauthorized", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PublicOnly sends logged-in users to their landing page and renders the page for everyone else.
func PublicOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, role.LandingPath(sess.Role), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(Session)
	return sess, ok
}

// ContextWithSession returns a context carrying sess and its backend token.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	ctx = context.WithValue(ctx, sessionContextKey, sess)
	return backend.WithToken(ctx, sess.AccessToken)
}

// SetSessionCookie sets the session cookie, expiring with the session.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
