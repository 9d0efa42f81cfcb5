package menu

import (
	"net/url"
	"strings"

	"gymfront/internal/domain/role"
)

// ActionSignout is the only reserved menu action. An item carrying it
// triggers a logout instead of navigating.
const ActionSignout = "signout"

// DefaultIcon is rendered when an item declares no icon.
const DefaultIcon = "question-circle"

// Item is one entry in a role's sidebar.
// An item is either a link (To set), a group (SubItems set) or an action (Action set).
type Item struct {
	Title    string
	To       string
	Icon     string
	Action   string
	SubItems []Item
}

// IsSignout reports whether the item is the logout action.
func (i Item) IsSignout() bool {
	return i.Action == ActionSignout
}

// IsGroup reports whether the item only groups sub-items.
func (i Item) IsGroup() bool {
	return len(i.SubItems) > 0
}

// IsLink reports whether the item navigates to a page.
func (i Item) IsLink() bool {
	return !i.IsSignout() && !i.IsGroup() && i.To != ""
}

// IconOrDefault returns the item's icon, falling back to DefaultIcon.
func (i Item) IconOrDefault() string {
	if i.Icon == "" {
		return DefaultIcon
	}
	return i.Icon
}

// Active reports whether the item (or one of its sub-items) points at path.
func (i Item) Active(path string) bool {
	if i.To != "" && (path == i.To || strings.HasPrefix(path, i.To+"/")) {
		return true
	}
	for _, sub := range i.SubItems {
		if sub.Active(path) {
			return true
		}
	}
	return false
}

var signout = Item{Title: "Cerrar sesión", Icon: "sign-out", Action: ActionSignout}

// byRole is the static role-to-navigation table.
var byRole = map[role.Role][]Item{
	role.Administrador: {
		{Title: "Dashboard", To: "/administrador/dashboard", Icon: "home"},
		{Title: "Módulo Usuarios", Icon: "users", SubItems: []Item{
			{Title: "Usuarios", To: "/administrador/usuarios", Icon: "users"},
			signout,
		}},
		{Title: "Módulo Disciplinas", Icon: "building", SubItems: []Item{
			{Title: "Disciplinas", To: "/administrador/disciplinas", Icon: "clipboard"},
			{Title: "Horarios", To: "/administrador/horarios", Icon: "calendar"},
			{Title: "Reservas", To: "/administrador/reservas", Icon: "calendar-check"},
			{Title: "Instructores", To: "/administrador/instructores", Icon: "user"},
		}},
		{Title: "Módulo Seguimiento", Icon: "building", SubItems: []Item{
			{Title: "Clientes", To: "/administrador/clientes", Icon: "calendar"},
			{Title: "Nutricionistas", To: "/administrador/nutricionistas", Icon: "user"},
			{Title: "Antecedentes", To: "/administrador/antecedentes", Icon: "clipboard"},
		}},
		{Title: "Módulo Administración", Icon: "building", SubItems: []Item{
			{Title: "Perfil", To: "/perfil", Icon: "user"},
			{Title: "Suscripciones", To: "/administrador/suscripciones", Icon: "calendar"},
			{Title: "Promociones", To: "/administrador/promociones", Icon: "clipboard"},
		}},
	},
	role.Cliente: {
		{Title: "Dashboard", To: "/cliente/dashboard", Icon: "home"},
		{Title: "Módulo Usuarios", Icon: "users", SubItems: []Item{
			{Title: "Perfil", To: "/cliente/perfil", Icon: "user"},
			signout,
		}},
		{Title: "Módulo Reservas", Icon: "calendar", SubItems: []Item{
			{Title: "Horarios", To: "/cliente/horarios", Icon: "calendar"},
			{Title: "Mis reservas", To: "/cliente/reservas", Icon: "calendar-check"},
		}},
		{Title: "Módulo Administración", Icon: "building", SubItems: []Item{
			{Title: "Suscripciones", To: "/cliente/suscripciones", Icon: "calendar"},
			{Title: "Mis suscripciones", To: "/cliente/mis-suscripciones", Icon: "box-open"},
			{Title: "Promociones", To: "/cliente/promociones", Icon: "clipboard"},
		}},
	},
	role.Nutricionista: {
		{Title: "Dashboard", To: "/nutricionista/dashboard", Icon: "home"},
		{Title: "Antecedentes", To: "/nutricionista/antecedentes", Icon: "clipboard"},
		{Title: "Clientes", To: "/nutricionista/clientes", Icon: "users"},
		{Title: "Perfil", To: "/perfil", Icon: "user"},
		signout,
	},
	role.Instructor: {
		{Title: "Dashboard", To: "/instructor/dashboard", Icon: "home"},
		{Title: "Mis disciplinas", To: "/instructor/disciplinas", Icon: "clipboard"},
		{Title: "Mis horarios", To: "/instructor/horarios", Icon: "calendar"},
		{Title: "Perfil", To: "/perfil", Icon: "user"},
		signout,
	},
}

// ForRole returns the ordered menu for r.
// POST: Returns an empty list for an unknown role; the result is a copy
// INVARIANT: Same role yields the same items in the same order
func ForRole(r role.Role) []Item {
	return cloneItems(byRole[r])
}

func cloneItems(items []Item) []Item {
	if len(items) == 0 {
		return []Item{}
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it
		if it.SubItems != nil {
			out[i].SubItems = cloneItems(it.SubItems)
		}
	}
	return out
}

// SidebarParam is the query parameter that keeps the sidebar open on narrow screens.
const SidebarParam = "menu"

// Sidebar is the open/closed state of the collapsible sidebar.
type Sidebar struct {
	Open bool
}

// SidebarFromQuery restores sidebar state from the current URL.
func SidebarFromQuery(q url.Values) Sidebar {
	return Sidebar{Open: q.Get(SidebarParam) == "open"}
}

// Toggle flips the sidebar state.
func (s Sidebar) Toggle() Sidebar {
	return Sidebar{Open: !s.Open}
}

// Close returns the closed state. Navigating or clicking outside closes the sidebar.
func (s Sidebar) Close() Sidebar {
	return Sidebar{}
}

// ToggleURL returns the current page URL with the sidebar state flipped.
func (s Sidebar) ToggleURL(u *url.URL) string {
	return s.Toggle().apply(u)
}

// CloseURL returns the current page URL with the sidebar closed.
func (s Sidebar) CloseURL(u *url.URL) string {
	return s.Close().apply(u)
}

func (s Sidebar) apply(u *url.URL) string {
	q := u.Query()
	if s.Open {
		q.Set(SidebarParam, "open")
	} else {
		q.Del(SidebarParam)
	}
	out := url.URL{Path: u.Path, RawQuery: q.Encode()}
	return out.String()
}
