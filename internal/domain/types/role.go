package types

import "strings"

// Role es el nivel de privilegio de un usuario. Jerárquico: mayor número = más permisos.
type Role int

const (
	RoleViewer      Role = 1
	RoleContributor Role = 2
	RoleEditor      Role = 3
	RoleAdmin       Role = 4
	RoleOwner       Role = 5
)

var roleNames = map[Role]string{
	RoleViewer:      "viewer",
	RoleContributor: "contributor",
	RoleEditor:      "editor",
	RoleAdmin:       "admin",
	RoleOwner:       "owner",
}

// IsValid retorna true si el rol está en el rango 1..5.
func (r Role) IsValid() bool {
	return r >= RoleViewer && r <= RoleOwner
}

// Name devuelve el nombre del rol o "unknown".
func (r Role) Name() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "unknown"
}

func (r Role) String() string { return r.Name() }

// AtLeast reporta si r satisface un requisito mínimo n.
func (r Role) AtLeast(n Role) bool { return r >= n }

// LookupRole busca un rol por nombre (case-insensitive).
func LookupRole(name string) (Role, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for r, n := range roleNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}

// ParseRole convierte un nombre en Role. Nombres desconocidos caen en viewer.
func ParseRole(name string) Role {
	if r, ok := LookupRole(name); ok {
		return r
	}
	return RoleViewer
}

// AllRoles devuelve los roles de menor a mayor.
func AllRoles() []Role {
	return []Role{RoleViewer, RoleContributor, RoleEditor, RoleAdmin, RoleOwner}
}
