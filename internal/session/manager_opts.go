package session

import "time"

type SessionManagerOpt func(*SessionManager)

// WithIdleTimeout overrides how long a player may sit silent before being
// disconnected.
func WithIdleTimeout(d time.Duration) SessionManagerOpt {
	return func(m *SessionManager) {
		m.idleTimeout = d
	}
}
