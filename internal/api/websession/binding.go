// Package websession adapts echo-contrib/gorilla sessions to the session
// binding port used by the login state machine.
package websession

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/proxy-auth/internal/core/ports"
)

const usernameKey = "username"

// regenerator is implemented by stores that keep values server-side under
// an ID and can issue a new ID for an existing session.
type regenerator interface {
	Regenerate(r *http.Request, s *sessions.Session) error
}

// Opener returns the session binding of the current request.
type Opener func(c echo.Context) (ports.SessionBinding, error)

// NewOpener returns an Opener for the named session. maxAge is restored on
// a session that was destroyed earlier in the same request before it is
// bound again.
func NewOpener(name string, maxAge int) Opener {
	return func(c echo.Context) (ports.SessionBinding, error) {
		sess, err := session.Get(name, c)
		if sess == nil {
			return nil, fmt.Errorf("session %q: %w", name, err)
		}
		// A cookie that fails to decode yields a usable new session.
		return &Binding{c: c, sess: sess, maxAge: maxAge}, nil
	}
}

// Binding implements ports.SessionBinding over a gorilla session.
type Binding struct {
	c         echo.Context
	sess      *sessions.Session
	maxAge    int
	destroyed bool
}

func (b *Binding) Username() (string, bool) {
	if b.destroyed {
		return "", false
	}
	u, ok := b.sess.Values[usernameKey].(string)
	return u, ok && u != ""
}

func (b *Binding) Exists() bool {
	return !b.destroyed && !b.sess.IsNew
}

func (b *Binding) Bind(username string) error {
	if b.sess.Options == nil {
		b.sess.Options = &sessions.Options{Path: "/", HttpOnly: true}
	}
	if b.sess.Options.MaxAge < 0 {
		b.sess.Options.MaxAge = b.maxAge
	}
	// A fresh ID on every bind, so a session ID planted before login is
	// never promoted to an authenticated one.
	if rg, ok := b.sess.Store().(regenerator); ok {
		if err := rg.Regenerate(b.c.Request(), b.sess); err != nil {
			return fmt.Errorf("regenerate session: %w", err)
		}
	}
	b.sess.Values[usernameKey] = username
	if err := b.sess.Save(b.c.Request(), b.c.Response()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	b.destroyed = false
	return nil
}

func (b *Binding) Destroy() error {
	if b.destroyed {
		return nil
	}
	b.sess.Values = make(map[interface{}]interface{})
	if b.sess.Options == nil {
		b.sess.Options = &sessions.Options{Path: "/"}
	}
	b.sess.Options.MaxAge = -1
	b.destroyed = true
	if err := b.sess.Save(b.c.Request(), b.c.Response()); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
