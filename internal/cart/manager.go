package cart

import (
	"context"

	"github.com/karimelbaz/sallati-backend/pkg/logger"
)

// Manager ties the per-session cart scope to the snapshot store. Snapshot
// failures are logged and swallowed; the in-memory cart stays authoritative.
type Manager struct {
	scope *Scope
	store *SnapshotStore
	logg  *logger.Logger
}

func NewManager(scope *Scope, store *SnapshotStore, logg *logger.Logger) *Manager {
	return &Manager{
		scope: scope,
		store: store,
		logg:  logg,
	}
}

// CartForSession returns the session's cart, hydrating from the snapshot
// store when the cart is brand new.
func (m *Manager) CartForSession(ctx context.Context, sessionID string) *Cart {
	if existing, ok := m.scope.Peek(sessionID); ok {
		return existing
	}

	c := m.scope.Cart(sessionID)
	if m.store == nil {
		return c
	}

	items, err := m.store.Load(ctx, sessionID)
	if err != nil {
		m.logg.Warn(m.logg.WithSessionID(ctx, sessionID), "cart snapshot load failed; starting empty")
		return c
	}
	if len(items) > 0 {
		c.restore(items)
	}
	return c
}

// Persist writes the current lines to the snapshot store.
func (m *Manager) Persist(ctx context.Context, sessionID string) {
	if m.store == nil {
		return
	}
	c, ok := m.scope.Peek(sessionID)
	if !ok {
		return
	}
	items, err := c.Items()
	if err != nil {
		return
	}
	if err := m.store.Save(ctx, sessionID, items); err != nil {
		m.logg.Warn(m.logg.WithSessionID(ctx, sessionID), "cart snapshot save failed")
	}
}

// EndSession releases the session's cart scope and drops its snapshot.
func (m *Manager) EndSession(ctx context.Context, sessionID string) {
	m.scope.Release(sessionID)
	if m.store == nil {
		return
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.logg.Warn(m.logg.WithSessionID(ctx, sessionID), "cart snapshot delete failed")
	}
}
