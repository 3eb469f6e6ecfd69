package redis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	sessionPrefix     = "session:"
	defaultSessionTTL = 24 * time.Hour
)

// SessionStore is a gorilla sessions.Store that keeps session values in
// Redis. The cookie only carries the signed session ID.
type SessionStore struct {
	client  *redis.Client
	codecs  []securecookie.Codec
	Options *sessions.Options
}

// NewSessionStore returns a store whose ID cookies are signed with
// keyPairs, which follow the securecookie hash/block pair convention.
func NewSessionStore(client *redis.Client, opts sessions.Options, keyPairs ...[]byte) *SessionStore {
	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok && opts.MaxAge > 0 {
			sc.MaxAge(opts.MaxAge)
		}
	}
	return &SessionStore{client: client, codecs: codecs, Options: &opts}
}

// Get returns the session cached in the request registry.
func (s *SessionStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New returns the session referenced by the request cookie, or a fresh one.
// An unknown or expired ID yields a new session without error.
func (s *SessionStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.codecs...); err != nil {
		session.ID = ""
		return session, err
	}

	found, err := s.load(r.Context(), session)
	if err != nil {
		return session, err
	}
	session.IsNew = !found
	if !found {
		session.ID = ""
	}
	return session, nil
}

// Save writes the session to Redis and refreshes the ID cookie. A negative
// MaxAge deletes both.
func (s *SessionStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(r.Context(), sessionPrefix+session.ID).Err(); err != nil {
				return fmt.Errorf("session: delete: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = base64.RawURLEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
	}

	data, err := encodeValues(session.Values)
	if err != nil {
		return err
	}

	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if err := s.client.Set(r.Context(), sessionPrefix+session.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("session: encode cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// Regenerate deletes the values stored under the current ID and clears it,
// so the next Save issues a new ID. Values stay on the session.
func (s *SessionStore) Regenerate(r *http.Request, session *sessions.Session) error {
	if session.ID == "" {
		return nil
	}
	if err := s.client.Del(r.Context(), sessionPrefix+session.ID).Err(); err != nil {
		return fmt.Errorf("session: regenerate: %w", err)
	}
	session.ID = ""
	return nil
}

func (s *SessionStore) load(ctx context.Context, session *sessions.Session) (bool, error) {
	val, err := s.client.Get(ctx, sessionPrefix+session.ID).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session: load: %w", err)
	}

	values, err := decodeValues(val)
	if err != nil {
		return false, err
	}
	session.Values = values
	return true, nil
}

// encodeValues serialises session values as a JSON object. Only string
// keys are supported.
func encodeValues(values map[interface{}]interface{}) ([]byte, error) {
	m := make(map[string]interface{}, len(values))
	for k, v := range values {
		ks, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("session: non-string key %v", k)
		}
		m[ks] = v
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("session: failed to marshal: %w", err)
	}
	return data, nil
}

func decodeValues(data []byte) (map[interface{}]interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	values := make(map[interface{}]interface{}, len(m))
	for k, v := range m {
		values[k] = v
	}
	return values, nil
}
