package mongo

import (
	"time"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

const (
	collectionPeople      = "people"
	collectionGroups      = "groups"
	collectionLoginEvents = "login_events"
)

type personDocument struct {
	ID          string          `bson:"_id"`
	Type        string          `bson:"type"`
	Username    string          `bson:"username"`
	FirstName   string          `bson:"first_name"`
	LastName    string          `bson:"last_name"`
	GroupIDs    []string        `bson:"group_ids"`
	Permissions map[string]bool `bson:"permissions"`
	Login       bool            `bson:"login"`
	Fields      map[string]any  `bson:"fields,omitempty"`
	CreatedAt   int64           `bson:"created_at"`
	UpdatedAt   int64           `bson:"updated_at"`
}

func toPersonDocument(p *domain.Person) personDocument {
	groups := p.GroupIDs
	if groups == nil {
		groups = []string{}
	}
	perms := map[string]bool(p.Permissions)
	if perms == nil {
		perms = map[string]bool{}
	}
	return personDocument{
		ID:          p.ID,
		Type:        p.Type,
		Username:    p.Username,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		GroupIDs:    groups,
		Permissions: perms,
		Login:       p.Login,
		Fields:      p.Fields,
		CreatedAt:   timeToUnix(p.CreatedAt),
		UpdatedAt:   timeToUnix(p.UpdatedAt),
	}
}

func (d personDocument) toDomain() *domain.Person {
	groups := d.GroupIDs
	if groups == nil {
		groups = []string{}
	}
	return &domain.Person{
		ID:          d.ID,
		Type:        d.Type,
		Username:    d.Username,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		GroupIDs:    groups,
		Permissions: domain.Permissions(d.Permissions),
		Login:       d.Login,
		Fields:      d.Fields,
		CreatedAt:   unixToTime(d.CreatedAt),
		UpdatedAt:   unixToTime(d.UpdatedAt),
	}
}

type groupDocument struct {
	ID          string   `bson:"_id"`
	Name        string   `bson:"name"`
	Permissions []string `bson:"permissions"`
	CreatedAt   int64    `bson:"created_at"`
}

func (d groupDocument) toDomain() *domain.Group {
	perms := d.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &domain.Group{
		ID:          d.ID,
		Name:        d.Name,
		Permissions: perms,
		CreatedAt:   unixToTime(d.CreatedAt),
	}
}

type loginEventDocument struct {
	Kind        string `bson:"kind"`
	Username    string `bson:"username"`
	State       string `bson:"state"`
	Origin      string `bson:"origin,omitempty"`
	RemoteAddr  string `bson:"remote_addr,omitempty"`
	Reason      string `bson:"reason,omitempty"`
	At          int64  `bson:"at"`
	ProcessedAt int64  `bson:"processed_at"`
}

func toLoginEventDocument(ev *domain.LoginEvent, processedAt time.Time) loginEventDocument {
	return loginEventDocument{
		Kind:        string(ev.Kind),
		Username:    ev.Username,
		State:       string(ev.State),
		Origin:      string(ev.Origin),
		RemoteAddr:  ev.RemoteAddr,
		Reason:      ev.Reason,
		At:          timeToUnix(ev.At),
		ProcessedAt: timeToUnix(processedAt),
	}
}

func timeToUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
