package mongo

import (
	"reflect"
	"testing"
	"time"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

func TestPersonDocument_NilCollectionsStoredEmpty(t *testing.T) {
	doc := toPersonDocument(&domain.Person{ID: "1", Type: domain.PersonType, Username: "jdoe"})

	if doc.GroupIDs == nil || len(doc.GroupIDs) != 0 {
		t.Errorf("expected empty group list, got %#v", doc.GroupIDs)
	}
	if doc.Permissions == nil {
		t.Error("expected empty permissions map")
	}
	if doc.CreatedAt != 0 {
		t.Errorf("zero time should map to 0, got %d", doc.CreatedAt)
	}
}

func TestPersonDocument_ToDomain(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &domain.Person{
		ID:          "abc",
		Type:        domain.PersonType,
		Username:    "jdoe",
		FirstName:   "j",
		LastName:    "doe",
		GroupIDs:    []string{"g1"},
		Permissions: domain.Permissions{"read": true},
		Login:       true,
		Fields:      map[string]any{"campus": "north"},
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	got := toPersonDocument(p).toDomain()
	if !reflect.DeepEqual(got, p) {
		t.Errorf("mapping mismatch\n got: %+v\nwant: %+v", got, p)
	}
}

func TestGroupDocument_ToDomain(t *testing.T) {
	g := groupDocument{ID: "g1", Name: "students"}.toDomain()
	if g.Permissions == nil {
		t.Error("expected non-nil permissions")
	}
	if !g.CreatedAt.IsZero() {
		t.Errorf("expected zero created time, got %s", g.CreatedAt)
	}
}

func TestLoginEventDocument(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := toLoginEventDocument(&domain.LoginEvent{
		Kind:     domain.EventLogin,
		Username: "jdoe",
		State:    domain.StateAuthenticated,
		Origin:   domain.OriginPersisted,
		At:       at,
	}, at.Add(time.Second))

	if doc.Kind != "login" || doc.State != "authenticated" || doc.Origin != "persisted" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.At != at.Unix() || doc.ProcessedAt != at.Unix()+1 {
		t.Errorf("unexpected timestamps: %d %d", doc.At, doc.ProcessedAt)
	}
}
