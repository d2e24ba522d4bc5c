package core

import "context"

// SessionStore persists small advisory key-value flags scoped to a login
// session (e.g. the dashboard view toggle). Values are last-write-wins and
// expire with the session; they are never shared across principals.
type SessionStore interface {
	// Get returns the stored value, or "" when the key is absent.
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
}
