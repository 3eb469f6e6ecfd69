package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/proxy-auth/internal/core/domain"
	"github.com/99minutos/proxy-auth/internal/core/ports"
)

// NullUsername is what some proxies forward when the auth module failed to
// produce a user.
const NullUsername = "(null)"

// CheckTrustedHeader rejects header values that indicate a broken proxy
// deployment. An empty value counts as missing.
func CheckTrustedHeader(value string) error {
	switch value {
	case "":
		return domain.ErrHeaderMissing
	case NullUsername:
		return domain.ErrHeaderNull
	}
	return nil
}

// Outcome is the result of one pass through the session state machine.
type Outcome struct {
	// Trail lists every state visited, starting with the initial one.
	Trail      []domain.SessionState
	Identity   *domain.Identity
	Err        error
	HadSession bool
}

// State returns the final state.
func (o Outcome) State() domain.SessionState {
	return o.Trail[len(o.Trail)-1]
}

type noopAuditor struct{}

func (noopAuditor) Record(domain.LoginEvent) {}

// Binder ties resolved identities to the session lifecycle: login,
// re-authentication on each request, and logout.
type Binder struct {
	resolver ports.IdentityResolver
	auditor  ports.LoginAuditor
	log      zerolog.Logger
	now      func() time.Time
}

// NewBinder returns a Binder. auditor may be nil.
func NewBinder(resolver ports.IdentityResolver, auditor ports.LoginAuditor, log zerolog.Logger) *Binder {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	return &Binder{resolver: resolver, auditor: auditor, log: log, now: time.Now}
}

// Login handles an asserted username from the trusted header. A
// misconfigured header never reaches the resolver and leaves the session
// untouched. A resolution failure destroys the session.
func (b *Binder) Login(ctx context.Context, sess ports.SessionBinding, header string) Outcome {
	m := b.start(domain.StateAnonymous)

	if err := CheckTrustedHeader(header); err != nil {
		b.log.Error().Err(err).Msg("login refused: proxy misconfigured")
		b.audit(ctx, domain.EventMisconfigured, header, m.current(), nil, err)
		return m.done(nil, err)
	}

	m.to(domain.StateAuthenticating)
	identity, err := b.resolver.Resolve(ctx, header)
	if err == nil {
		err = sess.Bind(header)
	}
	if err != nil {
		b.log.Error().Err(err).Str("username", header).Msg("login rejected")
		b.destroy(sess)
		m.to(domain.StateRejected)
		b.audit(ctx, domain.EventLogin, header, m.current(), nil, err)
		return m.done(nil, err)
	}

	m.to(domain.StateAuthenticated)
	b.log.Info().Str("username", header).Str("origin", string(identity.Origin)).Msg("login succeeded")
	b.audit(ctx, domain.EventLogin, header, m.current(), identity, nil)
	return m.done(identity, nil)
}

// Reauthenticate re-resolves the username bound to the session. Without a
// bound username the request stays anonymous. On failure the session is
// destroyed and the request continues unauthenticated.
func (b *Binder) Reauthenticate(ctx context.Context, sess ports.SessionBinding) Outcome {
	username, ok := sess.Username()
	if !ok {
		return b.start(domain.StateAnonymous).done(nil, nil)
	}

	m := b.start(domain.StateAuthenticated)
	identity, err := b.resolver.Resolve(ctx, username)
	if err != nil {
		b.log.Warn().Err(err).Str("username", username).Msg("session re-authentication failed")
		b.destroy(sess)
		m.to(domain.StateRejected)
		b.audit(ctx, domain.EventReauthFailed, username, m.current(), nil, err)
		return m.done(nil, err)
	}

	m.to(domain.StateAuthenticated)
	return m.done(identity, nil)
}

// Logout destroys the session unconditionally.
func (b *Binder) Logout(ctx context.Context, sess ports.SessionBinding) Outcome {
	had := sess.Exists()
	username, bound := sess.Username()

	initial := domain.StateAnonymous
	if bound {
		initial = domain.StateAuthenticated
	}
	m := b.start(initial)

	var err error
	if had {
		if err = sess.Destroy(); err != nil {
			b.log.Error().Err(err).Str("username", username).Msg("failed to destroy session on logout")
		}
	}
	m.to(domain.StateAnonymous)

	if bound {
		b.audit(ctx, domain.EventLogout, username, m.current(), nil, nil)
	}
	out := m.done(nil, err)
	out.HadSession = had
	return out
}

func (b *Binder) destroy(sess ports.SessionBinding) {
	if err := sess.Destroy(); err != nil {
		b.log.Error().Err(err).Msg("failed to destroy session")
	}
}

func (b *Binder) audit(ctx context.Context, kind domain.LoginEventKind, username string, state domain.SessionState, identity *domain.Identity, err error) {
	ev := domain.LoginEvent{
		Kind:     kind,
		Username: username,
		State:    state,
		At:       b.now().UTC(),
	}
	if identity != nil {
		ev.Origin = identity.Origin
	}
	if err != nil {
		ev.Reason = err.Error()
	}
	if r, ok := RequestFromContext(ctx); ok {
		ev.RemoteAddr = r.RemoteAddr
	}
	b.auditor.Record(ev)
}

func (b *Binder) start(initial domain.SessionState) *machine {
	return &machine{trail: []domain.SessionState{initial}, log: b.log}
}

// machine records the walk through the session states.
type machine struct {
	trail []domain.SessionState
	log   zerolog.Logger
}

func (m *machine) current() domain.SessionState {
	return m.trail[len(m.trail)-1]
}

func (m *machine) to(next domain.SessionState) {
	if cur := m.current(); !cur.CanTransitionTo(next) {
		m.log.Error().Str("from", string(cur)).Str("to", string(next)).Msg("invalid session transition")
	}
	m.trail = append(m.trail, next)
}

func (m *machine) done(identity *domain.Identity, err error) Outcome {
	return Outcome{Trail: m.trail, Identity: identity, Err: err}
}
