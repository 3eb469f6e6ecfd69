package websession

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const testName = "proxyauth"

func newStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	store.Options = &sessions.Options{Path: "/", MaxAge: 3600, HttpOnly: true}
	return store
}

// run executes fn inside the echo-contrib session middleware and returns
// the recorded response.
func run(t *testing.T, store sessions.Store, req *http.Request, fn func(c echo.Context) error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := session.Middleware(store)(fn)
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func cookieOf(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == testName {
			return ck
		}
	}
	t.Fatalf("no %s cookie in response", testName)
	return nil
}

func TestBinding_BindThenRead(t *testing.T) {
	store := newStore()
	open := NewOpener(testName, 3600)

	rec := run(t, store, httptest.NewRequest(http.MethodGet, "/login", nil), func(c echo.Context) error {
		b, err := open(c)
		if err != nil {
			return err
		}
		if b.Exists() {
			t.Error("fresh request must not have a session")
		}
		return b.Bind("alice")
	})
	ck := cookieOf(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	run(t, store, req, func(c echo.Context) error {
		b, err := open(c)
		if err != nil {
			return err
		}
		if !b.Exists() {
			t.Error("expected existing session")
		}
		if u, ok := b.Username(); !ok || u != "alice" {
			t.Errorf("expected alice, got %q %v", u, ok)
		}
		return nil
	})
}

func TestBinding_DestroyExpiresCookie(t *testing.T) {
	store := newStore()
	open := NewOpener(testName, 3600)

	rec := run(t, store, httptest.NewRequest(http.MethodGet, "/logout", nil), func(c echo.Context) error {
		b, _ := open(c)
		if err := b.Destroy(); err != nil {
			return err
		}
		if _, ok := b.Username(); ok {
			t.Error("destroyed session must not report a username")
		}
		if b.Exists() {
			t.Error("destroyed session must not exist")
		}
		return b.Destroy()
	})

	ck := cookieOf(t, rec)
	if ck.MaxAge >= 0 {
		t.Errorf("expected expired cookie, got MaxAge=%d", ck.MaxAge)
	}
}

func TestBinding_BindAfterDestroyRestoresMaxAge(t *testing.T) {
	store := newStore()
	open := NewOpener(testName, 3600)

	rec := run(t, store, httptest.NewRequest(http.MethodGet, "/login", nil), func(c echo.Context) error {
		b, _ := open(c)
		_ = b.Destroy()
		return b.Bind("bob")
	})

	var last *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == testName {
			last = ck
		}
	}
	if last == nil || last.MaxAge <= 0 {
		t.Fatalf("expected a live cookie after rebinding, got %+v", last)
	}
}

func TestBinding_ForgedCookieIsNewSession(t *testing.T) {
	store := newStore()
	open := NewOpener(testName, 3600)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", testName+"="+strings.Repeat("x", 40))
	run(t, store, req, func(c echo.Context) error {
		b, err := open(c)
		if err != nil {
			t.Fatalf("forged cookie must not fail the request: %v", err)
		}
		if b.Exists() {
			t.Error("forged cookie must not count as a session")
		}
		return nil
	})
}
