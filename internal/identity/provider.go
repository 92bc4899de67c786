package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/internal/session"
	"github.com/karimelbaz/sallati-backend/pkg/auth"
	"github.com/karimelbaz/sallati-backend/pkg/config"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
)

type roleSource interface {
	RoleByID(ctx context.Context, id uuid.UUID) (enums.UserRole, error)
}

type sessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Broadcaster is the in-process identity provider. The auth service publishes
// sign-in and sign-out events through it; the session tracker subscribes.
// Dispatch is synchronous, so subscribers must not call back into the
// broadcaster from their handlers.
type Broadcaster struct {
	jwtCfg   config.JWTConfig
	roles    roleSource
	sessions sessionChecker

	mu       sync.Mutex
	handlers map[uint64]func(*session.Session)
	nextID   uint64
	current  *session.Session
}

func NewBroadcaster(jwtCfg config.JWTConfig, roles roleSource, sessions sessionChecker) *Broadcaster {
	return &Broadcaster{
		jwtCfg:   jwtCfg,
		roles:    roles,
		sessions: sessions,
		handlers: make(map[uint64]func(*session.Session)),
	}
}

// SubscribeToSessionChanges registers a handler. The returned unsubscribe
// function is idempotent.
func (b *Broadcaster) SubscribeToSessionChanges(handler func(*session.Session)) (func(), error) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[id] = handler
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}, nil
}

// Publish records the session as current and dispatches it to all
// subscribers on the caller's stack. nil signals sign-out.
func (b *Broadcaster) Publish(sess *session.Session) {
	b.mu.Lock()
	b.current = sess
	handlers := make([]func(*session.Session), 0, len(b.handlers))
	for _, handler := range b.handlers {
		handlers = append(handlers, handler)
	}
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(sess)
	}
}

// GetCurrentSession returns the cached session after re-validating its
// access token; a revoked or expired session reads as signed out.
func (b *Broadcaster) GetCurrentSession(ctx context.Context) (*session.Session, error) {
	b.mu.Lock()
	current := b.current
	b.mu.Unlock()

	if current == nil {
		return nil, nil
	}

	claims, err := auth.ParseAccessToken(b.jwtCfg, current.AccessToken)
	if err != nil {
		return nil, nil
	}
	if b.sessions != nil {
		active, err := b.sessions.HasSession(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, nil
		}
	}
	return current, nil
}

// LookupUserRole resolves the user's role from storage.
func (b *Broadcaster) LookupUserRole(ctx context.Context, userID uuid.UUID) (session.Role, error) {
	role, err := b.roles.RoleByID(ctx, userID)
	if err != nil {
		return session.RoleUnknown, err
	}
	return RoleFromEnum(role), nil
}

// RoleFromEnum maps the persisted role onto the tracker's role type.
func RoleFromEnum(role enums.UserRole) session.Role {
	switch role {
	case enums.UserRoleCustomer:
		return session.RoleCustomer
	case enums.UserRoleSupplier:
		return session.RoleSupplier
	case enums.UserRoleAdmin:
		return session.RoleAdmin
	default:
		return session.RoleUnknown
	}
}
