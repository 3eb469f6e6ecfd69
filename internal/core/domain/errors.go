package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMisconfigured marks a broken deployment detected at the header check.
	ErrMisconfigured = errors.New("proxy misconfigured")
	ErrHeaderMissing = fmt.Errorf("%w: trusted identity header missing", ErrMisconfigured)
	ErrHeaderNull    = fmt.Errorf("%w: trusted identity header is \"(null)\"", ErrMisconfigured)

	ErrUnknownUser     = errors.New("unknown user")
	ErrPersonNotFound  = errors.New("person not found")
	ErrPersonExists    = errors.New("person already exists")
	ErrIDConflict      = errors.New("record id belongs to another person")
	ErrInvalidToken    = errors.New("invalid identity token")
	ErrTokensDisabled  = errors.New("identity tokens disabled")
	ErrForbidden       = errors.New("access forbidden")
	ErrUnauthenticated = errors.New("not authenticated")
)

// Diagnostic returns the operator-facing message shown when the proxy is
// misconfigured, or "" for any other error.
func Diagnostic(err error) string {
	switch {
	case errors.Is(err, ErrHeaderNull):
		return "MISCONFIGURED, #2: the proxy is passing the string \"(null)\" as the username. " +
			"Check the proxy server configuration and make sure the authentication module provides REMOTE_USER."
	case errors.Is(err, ErrHeaderMissing):
		return "MISCONFIGURED: the proxy configuration is not complete. " +
			"The trusted identity header was not supplied on the login route."
	}
	return ""
}

// StoreError reports a failure of the person or group store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

// HookError reports a failure returned by an extension hook.
type HookError struct {
	Hook string
	Err  error
}

func (e *HookError) Error() string { return "hook " + e.Hook + ": " + e.Err.Error() }
func (e *HookError) Unwrap() error { return e.Err }
