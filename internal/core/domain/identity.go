package domain

// Origin tags where a resolved identity came from.
type Origin string

const (
	OriginHardcoded Origin = "hardcoded"
	OriginPersisted Origin = "persisted"
)

// PermissionAdmin is the flag forced on by the administrator override.
const PermissionAdmin = "admin"

// Permissions maps a permission name to whether it is granted.
type Permissions map[string]bool

// Clone returns an independent copy. A nil receiver yields an empty map.
func (p Permissions) Clone() Permissions {
	out := make(Permissions, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Has reports whether the named permission is granted.
func (p Permissions) Has(name string) bool {
	return p[name]
}

// Identity is the resolved principal for a request. It is built fresh on
// every resolution and never shared between requests.
type Identity struct {
	ID          string         `json:"id"`
	Username    string         `json:"username"`
	FirstName   string         `json:"first_name,omitempty"`
	LastName    string         `json:"last_name,omitempty"`
	GroupIDs    []string       `json:"group_ids"`
	Permissions Permissions    `json:"permissions"`
	Origin      Origin         `json:"origin"`
	Fields      map[string]any `json:"fields,omitempty"`
}

// IsAdmin reports whether the identity carries the admin flag.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Permissions.Has(PermissionAdmin)
}

// GrantAdmin forces the admin flag on.
func (i *Identity) GrantAdmin() {
	if i.Permissions == nil {
		i.Permissions = Permissions{}
	}
	i.Permissions[PermissionAdmin] = true
}
