package domain

import "time"

// PersonType is the record type every persisted person carries.
const PersonType = "person"

// Person is a durable user record held by the person store.
type Person struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Username    string         `json:"username"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	GroupIDs    []string       `json:"group_ids"`
	Permissions Permissions    `json:"permissions"`
	Login       bool           `json:"login"`
	Fields      map[string]any `json:"fields,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Identity converts the record to a persisted-origin identity. Slices and
// maps are copied so hooks cannot mutate the stored record through it.
func (p *Person) Identity() *Identity {
	groups := make([]string, len(p.GroupIDs))
	copy(groups, p.GroupIDs)

	var fields map[string]any
	if len(p.Fields) > 0 {
		fields = make(map[string]any, len(p.Fields))
		for k, v := range p.Fields {
			fields[k] = v
		}
	}

	return &Identity{
		ID:          p.ID,
		Username:    p.Username,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		GroupIDs:    groups,
		Permissions: p.Permissions.Clone(),
		Origin:      OriginPersisted,
		Fields:      fields,
	}
}

// HardcodedUser is a statically configured account that bypasses the
// person store. It has no natural identifier.
type HardcodedUser struct {
	Username    string      `json:"username"    validate:"required"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Permissions Permissions `json:"permissions"`
}

// Identity converts the entry to a hardcoded-origin identity whose ID is
// the username.
func (u HardcodedUser) Identity() *Identity {
	return &Identity{
		ID:          u.Username,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		GroupIDs:    []string{},
		Permissions: u.Permissions.Clone(),
		Origin:      OriginHardcoded,
	}
}
