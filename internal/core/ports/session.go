package ports

// SessionBinding is the per-request view of the session state the binding
// layer mutates.
type SessionBinding interface {
	// Username returns the bound username, if any.
	Username() (string, bool)
	// Exists reports whether the request carried a session at all.
	Exists() bool
	// Bind stores the username and persists the session.
	Bind(username string) error
	// Destroy clears all session state. It is a no-op without a session.
	Destroy() error
}
