package service

import (
	"unicode/utf8"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// Materializer builds candidate person records for usernames that have no
// stored record yet. It never touches storage.
type Materializer struct {
	defaults map[string]any
}

// NewMaterializer returns a Materializer that copies defaults into the
// free-form fields of every candidate.
func NewMaterializer(defaults map[string]any) *Materializer {
	return &Materializer{defaults: defaults}
}

// Build returns a new candidate for username. The name fields use a naive
// split that a before-create hook is expected to improve.
func (m *Materializer) Build(username, groupID string) *domain.Person {
	first, last := SplitName(username)

	groups := []string{}
	if groupID != "" {
		groups = append(groups, groupID)
	}

	var fields map[string]any
	if len(m.defaults) > 0 {
		fields = make(map[string]any, len(m.defaults))
		for k, v := range m.defaults {
			fields[k] = v
		}
	}

	return &domain.Person{
		Type:        domain.PersonType,
		Username:    username,
		FirstName:   first,
		LastName:    last,
		GroupIDs:    groups,
		Permissions: domain.Permissions{},
		Login:       true,
		Fields:      fields,
	}
}

// SplitName returns the first character of username and the remainder.
func SplitName(username string) (first, last string) {
	if username == "" {
		return "", ""
	}
	_, size := utf8.DecodeRuneInString(username)
	return username[:size], username[size:]
}
