package redis

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const testSession = "proxyauth"

func newServerStore(t *testing.T, maxAge int) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, sessions.Options{Path: "/", MaxAge: maxAge}, []byte("0123456789abcdef0123456789abcdef")), mr
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == testSession {
			return ck
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestSessionStore_SaveAndLoad(t *testing.T) {
	store, mr := newServerStore(t, 600)

	sess, err := store.New(httptest.NewRequest(http.MethodGet, "/", nil), testSession)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sess.Values["username"] = "jdoe"
	rec := httptest.NewRecorder()
	if err := store.Save(httptest.NewRequest(http.MethodGet, "/", nil), rec, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("save must assign an id")
	}
	key := sessionPrefix + sess.ID
	if !mr.Exists(key) {
		t.Fatalf("expected key %s in redis", key)
	}
	if ttl := mr.TTL(key); ttl != 600*time.Second {
		t.Errorf("expected ttl from MaxAge, got %s", ttl)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, rec))
	loaded, err := store.New(req, testSession)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.IsNew || loaded.ID != sess.ID || loaded.Values["username"] != "jdoe" {
		t.Errorf("unexpected reloaded session: new=%v id=%q values=%v", loaded.IsNew, loaded.ID, loaded.Values)
	}
}

func TestSessionStore_DefaultTTL(t *testing.T) {
	store, mr := newServerStore(t, 0)

	sess, _ := store.New(httptest.NewRequest(http.MethodGet, "/", nil), testSession)
	if err := store.Save(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder(), sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL(sessionPrefix + sess.ID); ttl != defaultSessionTTL {
		t.Errorf("expected default ttl, got %s", ttl)
	}
}

func TestSessionStore_NegativeMaxAgeDeletes(t *testing.T) {
	store, mr := newServerStore(t, 600)

	sess, _ := store.New(httptest.NewRequest(http.MethodGet, "/", nil), testSession)
	sess.Values["username"] = "jdoe"
	if err := store.Save(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder(), sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	sess.Options.MaxAge = -1
	rec := httptest.NewRecorder()
	if err := store.Save(httptest.NewRequest(http.MethodGet, "/", nil), rec, sess); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists(sessionPrefix + sess.ID) {
		t.Error("negative MaxAge must delete the stored values")
	}
	if ck := sessionCookie(t, rec); ck.MaxAge >= 0 {
		t.Errorf("expected expired cookie, got MaxAge=%d", ck.MaxAge)
	}
}

func TestSessionStore_UnknownIDIsNewSession(t *testing.T) {
	store, mr := newServerStore(t, 600)

	sess, _ := store.New(httptest.NewRequest(http.MethodGet, "/", nil), testSession)
	rec := httptest.NewRecorder()
	if err := store.Save(httptest.NewRequest(http.MethodGet, "/", nil), rec, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FlushAll()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, rec))
	loaded, err := store.New(req, testSession)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !loaded.IsNew || loaded.ID != "" {
		t.Errorf("expired id must yield a fresh session, got new=%v id=%q", loaded.IsNew, loaded.ID)
	}
}

func TestSessionStore_Regenerate(t *testing.T) {
	store, mr := newServerStore(t, 600)

	sess, _ := store.New(httptest.NewRequest(http.MethodGet, "/", nil), testSession)
	sess.Values["username"] = "jdoe"
	if err := store.Save(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder(), sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	oldID := sess.ID

	if err := store.Regenerate(httptest.NewRequest(http.MethodGet, "/", nil), sess); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if sess.ID != "" || mr.Exists(sessionPrefix+oldID) {
		t.Fatal("regenerate must drop the old id and its values")
	}
	if sess.Values["username"] != "jdoe" {
		t.Error("regenerate must keep the session values")
	}

	if err := store.Save(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder(), sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	if sess.ID == "" || sess.ID == oldID {
		t.Errorf("expected a new id, got %q", sess.ID)
	}

	// No id yet: nothing to delete.
	fresh, _ := store.New(httptest.NewRequest(http.MethodGet, "/", nil), testSession)
	if err := store.Regenerate(httptest.NewRequest(http.MethodGet, "/", nil), fresh); err != nil {
		t.Errorf("regenerate on a new session: %v", err)
	}
}
