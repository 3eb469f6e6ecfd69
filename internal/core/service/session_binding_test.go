package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubResolver struct {
	resolveFn func(ctx context.Context, username string) (*domain.Identity, error)
	calls     []string
}

func (s *stubResolver) Resolve(ctx context.Context, username string) (*domain.Identity, error) {
	s.calls = append(s.calls, username)
	return s.resolveFn(ctx, username)
}

type fakeSession struct {
	username  string
	bound     bool
	exists    bool
	bindErr   error
	destroyed int
}

func (f *fakeSession) Username() (string, bool) { return f.username, f.bound }
func (f *fakeSession) Exists() bool             { return f.exists }

func (f *fakeSession) Bind(username string) error {
	if f.bindErr != nil {
		return f.bindErr
	}
	f.username, f.bound, f.exists = username, true, true
	return nil
}

func (f *fakeSession) Destroy() error {
	f.destroyed++
	f.username, f.bound, f.exists = "", false, false
	return nil
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []domain.LoginEvent
}

func (r *recordingAuditor) Record(ev domain.LoginEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func okResolver() *stubResolver {
	return &stubResolver{resolveFn: func(_ context.Context, username string) (*domain.Identity, error) {
		return &domain.Identity{ID: username, Username: username, Origin: domain.OriginHardcoded}, nil
	}}
}

func failingResolver(err error) *stubResolver {
	return &stubResolver{resolveFn: func(context.Context, string) (*domain.Identity, error) {
		return nil, err
	}}
}

func trail(states ...domain.SessionState) []domain.SessionState { return states }

// ---------------------------------------------------------------------------
// CheckTrustedHeader
// ---------------------------------------------------------------------------

func TestCheckTrustedHeader(t *testing.T) {
	tests := []struct {
		value string
		want  error
	}{
		{"", domain.ErrHeaderMissing},
		{"(null)", domain.ErrHeaderNull},
		{"jdoe", nil},
		{"(NULL)", nil},
	}
	for _, tt := range tests {
		err := CheckTrustedHeader(tt.value)
		if !errors.Is(err, tt.want) && !(tt.want == nil && err == nil) {
			t.Errorf("CheckTrustedHeader(%q) = %v, want %v", tt.value, err, tt.want)
		}
		if tt.want != nil && !errors.Is(err, domain.ErrMisconfigured) {
			t.Errorf("CheckTrustedHeader(%q) should wrap ErrMisconfigured", tt.value)
		}
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLogin_Success(t *testing.T) {
	res := okResolver()
	aud := &recordingAuditor{}
	sess := &fakeSession{}
	b := NewBinder(res, aud, zerolog.Nop())

	req := httptest.NewRequest("GET", "/login", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	out := b.Login(WithRequest(context.Background(), req), sess, "alice")

	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if !reflect.DeepEqual(out.Trail, trail(domain.StateAnonymous, domain.StateAuthenticating, domain.StateAuthenticated)) {
		t.Errorf("unexpected trail: %v", out.Trail)
	}
	if out.Identity == nil || out.Identity.Username != "alice" {
		t.Errorf("unexpected identity: %+v", out.Identity)
	}
	if u, ok := sess.Username(); !ok || u != "alice" {
		t.Errorf("session not bound: %q %v", u, ok)
	}
	if len(aud.events) != 1 {
		t.Fatalf("expected one audit event, got %d", len(aud.events))
	}
	ev := aud.events[0]
	if ev.Kind != domain.EventLogin || ev.State != domain.StateAuthenticated || ev.Origin != domain.OriginHardcoded {
		t.Errorf("unexpected audit event: %+v", ev)
	}
	if ev.RemoteAddr != "10.0.0.7:5555" {
		t.Errorf("expected remote addr from request, got %q", ev.RemoteAddr)
	}
}

func TestLogin_NullHeader_NeverResolves(t *testing.T) {
	res := okResolver()
	sess := &fakeSession{}
	b := NewBinder(res, nil, zerolog.Nop())

	out := b.Login(context.Background(), sess, "(null)")

	if !errors.Is(out.Err, domain.ErrHeaderNull) {
		t.Fatalf("expected ErrHeaderNull, got %v", out.Err)
	}
	if len(res.calls) != 0 {
		t.Errorf("resolver must not be invoked, got calls %v", res.calls)
	}
	if _, ok := sess.Username(); ok {
		t.Error("session must not be bound")
	}
	if sess.destroyed != 0 {
		t.Error("session must be left untouched")
	}
	if out.State() != domain.StateAnonymous {
		t.Errorf("expected anonymous state, got %s", out.State())
	}
}

func TestLogin_MissingHeader(t *testing.T) {
	res := okResolver()
	aud := &recordingAuditor{}
	b := NewBinder(res, aud, zerolog.Nop())

	out := b.Login(context.Background(), &fakeSession{}, "")

	if !errors.Is(out.Err, domain.ErrHeaderMissing) {
		t.Fatalf("expected ErrHeaderMissing, got %v", out.Err)
	}
	if len(res.calls) != 0 {
		t.Error("resolver must not be invoked")
	}
	if len(aud.events) != 1 || aud.events[0].Kind != domain.EventMisconfigured {
		t.Errorf("expected misconfigured audit event, got %+v", aud.events)
	}
}

func TestLogin_ResolveFailure_DestroysSession(t *testing.T) {
	res := failingResolver(domain.ErrUnknownUser)
	sess := &fakeSession{username: "stale", bound: true, exists: true}
	b := NewBinder(res, nil, zerolog.Nop())

	out := b.Login(context.Background(), sess, "ghost")

	if !errors.Is(out.Err, domain.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", out.Err)
	}
	if !reflect.DeepEqual(out.Trail, trail(domain.StateAnonymous, domain.StateAuthenticating, domain.StateRejected)) {
		t.Errorf("unexpected trail: %v", out.Trail)
	}
	if sess.destroyed != 1 {
		t.Errorf("expected session destroyed once, got %d", sess.destroyed)
	}
	if out.Identity != nil {
		t.Error("rejected login must not carry an identity")
	}
}

func TestLogin_BindFailure(t *testing.T) {
	sess := &fakeSession{bindErr: errors.New("cookie too large")}
	b := NewBinder(okResolver(), nil, zerolog.Nop())

	out := b.Login(context.Background(), sess, "alice")

	if out.Err == nil || out.State() != domain.StateRejected {
		t.Fatalf("expected rejection, got state=%s err=%v", out.State(), out.Err)
	}
	if sess.destroyed != 1 {
		t.Error("session must be destroyed when binding fails")
	}
}

// ---------------------------------------------------------------------------
// Reauthenticate
// ---------------------------------------------------------------------------

func TestReauthenticate_NoSession(t *testing.T) {
	res := okResolver()
	b := NewBinder(res, nil, zerolog.Nop())

	out := b.Reauthenticate(context.Background(), &fakeSession{})

	if out.Err != nil || out.Identity != nil {
		t.Errorf("expected anonymous pass-through, got %+v", out)
	}
	if !reflect.DeepEqual(out.Trail, trail(domain.StateAnonymous)) {
		t.Errorf("unexpected trail: %v", out.Trail)
	}
	if len(res.calls) != 0 {
		t.Error("resolver must not run for anonymous sessions")
	}
}

func TestReauthenticate_Success(t *testing.T) {
	res := okResolver()
	b := NewBinder(res, nil, zerolog.Nop())
	sess := &fakeSession{username: "alice", bound: true, exists: true}

	out := b.Reauthenticate(context.Background(), sess)

	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if !reflect.DeepEqual(out.Trail, trail(domain.StateAuthenticated, domain.StateAuthenticated)) {
		t.Errorf("unexpected trail: %v", out.Trail)
	}
	if !reflect.DeepEqual(res.calls, []string{"alice"}) {
		t.Errorf("expected one resolution for the bound user, got %v", res.calls)
	}
	if sess.destroyed != 0 {
		t.Error("successful re-authentication must keep the session")
	}
}

func TestReauthenticate_Failure_DestroysSession(t *testing.T) {
	aud := &recordingAuditor{}
	b := NewBinder(failingResolver(domain.ErrUnknownUser), aud, zerolog.Nop())
	sess := &fakeSession{username: "gone", bound: true, exists: true}

	out := b.Reauthenticate(context.Background(), sess)

	if !errors.Is(out.Err, domain.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", out.Err)
	}
	if out.State() != domain.StateRejected {
		t.Errorf("expected rejected, got %s", out.State())
	}
	if sess.destroyed != 1 {
		t.Error("session must be destroyed")
	}
	if len(aud.events) != 1 || aud.events[0].Kind != domain.EventReauthFailed {
		t.Errorf("expected reauth_failed audit, got %+v", aud.events)
	}
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestLogout_Twice(t *testing.T) {
	aud := &recordingAuditor{}
	b := NewBinder(okResolver(), aud, zerolog.Nop())
	sess := &fakeSession{username: "alice", bound: true, exists: true}

	first := b.Logout(context.Background(), sess)
	if first.Err != nil || !first.HadSession {
		t.Fatalf("first logout: %+v", first)
	}
	if !reflect.DeepEqual(first.Trail, trail(domain.StateAuthenticated, domain.StateAnonymous)) {
		t.Errorf("unexpected trail: %v", first.Trail)
	}

	second := b.Logout(context.Background(), sess)
	if second.Err != nil {
		t.Fatalf("second logout must not fail: %v", second.Err)
	}
	if second.HadSession {
		t.Error("second logout should report no prior session")
	}
	if second.State() != domain.StateAnonymous {
		t.Errorf("expected anonymous, got %s", second.State())
	}
	if sess.destroyed != 1 {
		t.Errorf("expected a single destroy, got %d", sess.destroyed)
	}
	if len(aud.events) != 1 || aud.events[0].Kind != domain.EventLogout {
		t.Errorf("expected one logout audit, got %+v", aud.events)
	}
}

func TestLogout_ThenReauthenticateIsAnonymous(t *testing.T) {
	res := okResolver()
	b := NewBinder(res, nil, zerolog.Nop())
	sess := &fakeSession{username: "alice", bound: true, exists: true}

	b.Logout(context.Background(), sess)
	out := b.Reauthenticate(context.Background(), sess)

	if out.Identity != nil || out.State() != domain.StateAnonymous {
		t.Errorf("expected anonymous after logout, got %+v", out)
	}
	if len(res.calls) != 0 {
		t.Error("no resolution after logout")
	}
}
