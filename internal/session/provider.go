package session

import (
	"context"

	"github.com/google/uuid"
)

// Provider is the identity surface the tracker observes. Subscribe handlers
// may be invoked synchronously from the provider's own dispatch, so the
// tracker must never call back into the provider from inside a handler.
type Provider interface {
	// SubscribeToSessionChanges registers the handler and returns an
	// unsubscribe function. The handler receives nil when the session ends.
	SubscribeToSessionChanges(handler func(*Session)) (func(), error)

	// GetCurrentSession returns the session active at call time, or nil.
	GetCurrentSession(ctx context.Context) (*Session, error)

	// LookupUserRole resolves the storefront role for the user.
	LookupUserRole(ctx context.Context, userID uuid.UUID) (Role, error)
}

// Scheduler defers work off the current call stack. The default
// implementation runs the function on a new goroutine; tests substitute a
// synchronous one.
type Scheduler interface {
	Defer(fn func())
}

// GoScheduler runs deferred work on its own goroutine.
type GoScheduler struct{}

func (GoScheduler) Defer(fn func()) {
	go fn()
}
