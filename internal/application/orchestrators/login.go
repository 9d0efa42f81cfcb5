package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gymfront/internal/adapters/backend"
	"gymfront/internal/domain/role"
	"gymfront/internal/domain/session"
	"gymfront/internal/domain/usuario"
)

// AuthAPIForLogin defines the backend calls needed by Login.
type AuthAPIForLogin interface {
	Login(ctx context.Context, username, password string) (backend.TokenPair, error)
	Me(ctx context.Context) (usuario.Usuario, error)
	ProfileExists(ctx context.Context, r role.Role, userID int64) (bool, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	API AuthAPIForLogin
	Now func() time.Time
}

var (
	ErrMissingCredentials = errors.New("ingresa tu usuario y contraseña")
	ErrInvalidCredentials = errors.New("usuario o contraseña incorrectos")
	ErrRoleNotSupported   = errors.New("tu cuenta no tiene un rol con acceso a este sistema")
)

// ExecuteLogin exchanges credentials for a backend token and builds the session.
// PRE: Username and Password provided
// POST: Returns a session whose expiry is the earlier of 24h and the token's exp claim
// INVARIANT: A session is only produced for a recognised role
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (session.Session, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return session.Session{}, ErrMissingCredentials
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	pair, err := deps.API.Login(ctx, username, input.Password)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && (apiErr.Kind == backend.KindUnauthorized || apiErr.Status == 400) {
			slog.Info("auth_event", "event", "login_failed", "username", username, "reason", "bad_credentials")
			return session.Session{}, ErrInvalidCredentials
		}
		return session.Session{}, err
	}

	authed := backend.WithToken(ctx, pair.Access)
	me, err := deps.API.Me(authed)
	if err != nil {
		return session.Session{}, err
	}
	r, err := role.Parse(me.Rol)
	if err != nil {
		slog.Warn("auth_event", "event", "login_blocked", "username", username, "reason", "unknown_role", "rol", me.Rol)
		return session.Session{}, ErrRoleNotSupported
	}

	var profileID int64
	exists, err := deps.API.ProfileExists(authed, r, me.ID)
	switch {
	case err != nil:
		return session.Session{}, err
	case exists:
		profileID = me.ID
	case r != role.Administrador:
		slog.Warn("profile_missing", "user_id", me.ID, "role", r.String())
	}

	tokenExp, err := backend.TokenExpiry(pair.Access)
	if err != nil {
		slog.Warn("token_expiry_unreadable", "user_id", me.ID, "error", err)
	}
	created := now()
	sess := session.Session{
		UserID:      me.ID,
		ProfileID:   profileID,
		Username:    me.Username,
		Email:       me.Email,
		Nombre:      me.NombreCompleto(),
		Role:        r,
		AccessToken: pair.Access,
		CreatedAt:   created,
		ExpiresAt:   session.ExpiryFor(created, tokenExp),
	}
	slog.Info("auth_event", "event", "login_success", "user_id", me.ID, "role", r.String())
	return sess, nil
}
