package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/logger"
)

// Machine tracks the client session lifecycle. It subscribes to provider
// change events, fetches the session once at startup, and resolves the user
// role off the event callback stack. Provider failures are logged and degrade
// the snapshot; they never propagate to callers.
type Machine struct {
	provider Provider
	sched    Scheduler
	logg     *logger.Logger
	fallback time.Duration
	onChange func(Snapshot)

	mu          sync.Mutex
	snap        Snapshot
	alive       bool
	eventSeen   bool
	gen         uint64
	unsubscribe func()
	timer       *time.Timer
	stopOnce    sync.Once
}

// NewMachine builds a tracker in the initializing state. onChange may be nil;
// when set it is invoked outside the tracker's lock after every state change.
func NewMachine(provider Provider, sched Scheduler, logg *logger.Logger, fallback time.Duration, onChange func(Snapshot)) *Machine {
	if sched == nil {
		sched = GoScheduler{}
	}
	return &Machine{
		provider: provider,
		sched:    sched,
		logg:     logg,
		fallback: fallback,
		onChange: onChange,
		snap: Snapshot{
			Phase:   PhaseInitializing,
			Loading: true,
		},
	}
}

// Start subscribes to session changes, kicks off the startup fetch, and arms
// the loading fallback timer.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.alive {
		m.mu.Unlock()
		return fmt.Errorf("session tracker already started")
	}
	m.alive = true
	m.mu.Unlock()

	unsubscribe, err := m.provider.SubscribeToSessionChanges(func(sess *Session) {
		m.handleChange(ctx, sess)
	})
	if err != nil {
		m.mu.Lock()
		m.alive = false
		m.mu.Unlock()
		return fmt.Errorf("subscribing to session changes: %w", err)
	}

	m.mu.Lock()
	m.unsubscribe = unsubscribe
	if m.fallback > 0 {
		m.timer = time.AfterFunc(m.fallback, func() {
			m.apply(ctx, fallbackTimeout{})
		})
	}
	m.mu.Unlock()

	m.sched.Defer(func() {
		sess, fetchErr := m.provider.GetCurrentSession(ctx)
		if fetchErr != nil {
			m.logg.Warn(ctx, "initial session fetch failed; treating as signed out")
		}
		m.applyInitial(ctx, sess, fetchErr)
	})

	return nil
}

// Stop tears the tracker down. The provider subscription is removed exactly
// once; further events and pending role lookups are ignored.
func (m *Machine) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		m.alive = false
		unsubscribe := m.unsubscribe
		m.unsubscribe = nil
		timer := m.timer
		m.timer = nil
		m.mu.Unlock()

		if timer != nil {
			timer.Stop()
		}
		if unsubscribe != nil {
			unsubscribe()
		}
	})
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// handleChange runs synchronously inside the provider's dispatch, so it only
// assigns state; the role lookup is deferred to the scheduler. Marking the
// event seen and applying it happen in one critical section.
func (m *Machine) handleChange(ctx context.Context, sess *Session) {
	m.mu.Lock()
	m.eventSeen = true
	after := m.applyLocked(ctx, sessionChanged{session: sess})
	m.mu.Unlock()
	after()
}

// applyInitial applies the startup fetch result unless a change event already
// arrived; change events carry fresher state than the fetch that raced them.
// The guard and the apply share one critical section, so a change event can
// never land between the check and the write and be overwritten.
func (m *Machine) applyInitial(ctx context.Context, sess *Session, err error) {
	m.mu.Lock()
	if m.eventSeen {
		m.mu.Unlock()
		m.logg.Debug(ctx, "initial session fetch superseded by change event")
		return
	}
	after := m.applyLocked(ctx, initialSession{session: sess, err: err})
	m.mu.Unlock()
	after()
}

func (m *Machine) apply(ctx context.Context, ev event) {
	m.mu.Lock()
	after := m.applyLocked(ctx, ev)
	m.mu.Unlock()
	after()
}

// applyLocked reduces one event while the caller holds m.mu and returns the
// follow-up work to run after the lock is released.
func (m *Machine) applyLocked(ctx context.Context, ev event) func() {
	if !m.alive {
		return func() {}
	}

	next, eff := reduce(m.snap, ev)
	changed := next != m.snap
	m.snap = next

	var fetchGen uint64
	var fetchUser uuid.UUID
	if eff == effectFetchRole {
		m.gen++
		fetchGen = m.gen
		fetchUser = next.User.ID
	}
	onChange := m.onChange

	return func() {
		if eff == effectFetchRole {
			m.sched.Defer(func() {
				m.resolveRole(ctx, fetchGen, fetchUser)
			})
		}
		if changed && onChange != nil {
			onChange(next)
		}
	}
}

// resolveRole performs the deferred role lookup. A stale generation means a
// newer session event superseded this lookup; its result is discarded. The
// generation check and state write happen under one lock so a stale result
// can never land on a newer session.
func (m *Machine) resolveRole(ctx context.Context, gen uint64, userID uuid.UUID) {
	role, err := m.provider.LookupUserRole(ctx, userID)
	if err != nil {
		m.logg.Warn(m.logg.WithUserID(ctx, userID.String()), "role lookup failed; leaving role unknown")
	}

	m.mu.Lock()
	if !m.alive || gen != m.gen {
		m.mu.Unlock()
		return
	}
	next, _ := reduce(m.snap, roleResolved{role: role, err: err})
	changed := next != m.snap
	m.snap = next
	onChange := m.onChange
	m.mu.Unlock()

	if changed && onChange != nil {
		onChange(next)
	}
}
