package domain

import "time"

// SessionState represents the authentication status of a browser session.
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateAuthenticated  SessionState = "authenticated"
	StateRejected       SessionState = "rejected"
)

// validSessionTransitions defines the allowed session state machine edges.
// There is no terminal state; a rejected session is destroyed and starts
// over as anonymous.
var validSessionTransitions = map[SessionState][]SessionState{
	StateAnonymous:      {StateAuthenticating, StateAnonymous},
	StateAuthenticating: {StateAuthenticated, StateRejected},
	StateAuthenticated:  {StateAuthenticated, StateRejected, StateAnonymous, StateAuthenticating},
	StateRejected:       {StateAnonymous, StateAuthenticating},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range validSessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// LoginEventKind names the session operation an audit event records.
type LoginEventKind string

const (
	EventLogin         LoginEventKind = "login"
	EventReauthFailed  LoginEventKind = "reauth_failed"
	EventLogout        LoginEventKind = "logout"
	EventMisconfigured LoginEventKind = "misconfigured"
)

// LoginEvent is an audit record of a session state change.
type LoginEvent struct {
	Kind       LoginEventKind
	Username   string
	State      SessionState
	Origin     Origin // empty unless an identity was resolved
	RemoteAddr string
	Reason     string // error summary, never secrets
	At         time.Time
}
