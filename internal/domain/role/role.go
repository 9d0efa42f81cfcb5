package role

import "errors"

// Role is the authorization tag attached to every authenticated user.
type Role string

// Role constants. Values match the tags issued by the backend.
const (
	Administrador Role = "Administrador"
	Cliente       Role = "Cliente"
	Nutricionista Role = "Nutricionista"
	Instructor    Role = "Instructor"
)

// All lists every valid role in display order.
var All = []Role{Administrador, Cliente, Nutricionista, Instructor}

// ErrUnknownRole is returned when a tag does not name a known role.
var ErrUnknownRole = errors.New("unknown role")

// Parse converts a backend role tag into a Role.
// PRE: none
// POST: Returns the matching Role or ErrUnknownRole; matching is exact
func Parse(s string) (Role, error) {
	for _, r := range All {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrUnknownRole
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := Parse(string(r))
	return err == nil
}

// String returns the role tag.
func (r Role) String() string {
	return string(r)
}

// BasePath returns the URL prefix of the role's page subtree.
// POST: Returns "" for an unknown role
func BasePath(r Role) string {
	switch r {
	case Administrador:
		return "/administrador"
	case Cliente:
		return "/cliente"
	case Nutricionista:
		return "/nutricionista"
	case Instructor:
		return "/instructor"
	}
	return ""
}

// LandingPath returns the page a user of role r lands on after login.
// POST: Unknown roles land on /unauthorized
func LandingPath(r Role) string {
	base := BasePath(r)
	if base == "" {
		return "/unauthorized"
	}
	return base + "/dashboard"
}

// Set is an allowed-roles set. The zero value allows every valid role.
type Set struct {
	roles map[Role]bool
}

// NewSet builds a Set from the given roles.
func NewSet(roles ...Role) Set {
	if len(roles) == 0 {
		return Set{}
	}
	m := make(map[Role]bool, len(roles))
	for _, r := range roles {
		m[r] = true
	}
	return Set{roles: m}
}

// Allows reports whether r may enter a subtree guarded by this set.
// INVARIANT: An empty set allows any valid role
func (s Set) Allows(r Role) bool {
	if !r.Valid() {
		return false
	}
	if len(s.roles) == 0 {
		return true
	}
	return s.roles[r]
}
