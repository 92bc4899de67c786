package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/logger"
)

// syncScheduler queues deferred work so tests control exactly when it runs.
type syncScheduler struct {
	queue []func()
}

func (s *syncScheduler) Defer(fn func()) {
	s.queue = append(s.queue, fn)
}

func (s *syncScheduler) Drain() {
	for len(s.queue) > 0 {
		fn := s.queue[0]
		s.queue = s.queue[1:]
		fn()
	}
}

type fakeProvider struct {
	mu          sync.Mutex
	handler     func(*Session)
	unsubCalls  int
	current     *Session
	fetchErr    error
	fetchHook   func()
	roles       map[uuid.UUID]Role
	roleErr     error
	roleLookups int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{roles: make(map[uuid.UUID]Role)}
}

func (f *fakeProvider) SubscribeToSessionChanges(handler func(*Session)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubCalls++
		f.handler = nil
	}, nil
}

func (f *fakeProvider) GetCurrentSession(context.Context) (*Session, error) {
	f.mu.Lock()
	sess, err := f.current, f.fetchErr
	hook := f.fetchHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return sess, err
}

func (f *fakeProvider) LookupUserRole(_ context.Context, userID uuid.UUID) (Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleLookups++
	if f.roleErr != nil {
		return RoleUnknown, f.roleErr
	}
	return f.roles[userID], nil
}

func (f *fakeProvider) Publish(sess *Session) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(sess)
	}
}

func sessionFor(role Role, provider *fakeProvider) *Session {
	user := &User{ID: uuid.New(), Email: "user@example.com"}
	provider.roles[user.ID] = role
	return &Session{AccessToken: "token-" + string(role), User: user}
}

func newTestMachine(provider *fakeProvider, sched Scheduler, onChange func(Snapshot)) *Machine {
	logg := logger.New(logger.Options{ServiceName: "test"})
	return NewMachine(provider, sched, logg, 0, onChange)
}

func TestMachineStartsInitializing(t *testing.T) {
	t.Parallel()

	m := newTestMachine(newFakeProvider(), &syncScheduler{}, nil)
	snap := m.Snapshot()
	if snap.Phase != PhaseInitializing || !snap.Loading {
		t.Fatalf("expected initializing/loading snapshot, got %+v", snap)
	}
}

func TestMachineInitialFetchNoSession(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	sched := &syncScheduler{}
	m := newTestMachine(provider, sched, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.Stop()

	sched.Drain()

	snap := m.Snapshot()
	if snap.Phase != PhaseUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", snap.Phase)
	}
	if snap.Loading {
		t.Fatalf("expected loading false after initial fetch")
	}
}

func TestMachineInitialFetchResolvesRole(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.current = sessionFor(RoleCustomer, provider)
	sched := &syncScheduler{}
	m := newTestMachine(provider, sched, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.Stop()

	sched.Drain()

	snap := m.Snapshot()
	if snap.Phase != PhaseResolved {
		t.Fatalf("expected resolved, got %s", snap.Phase)
	}
	if !snap.IsCustomer() {
		t.Fatalf("expected customer role, got %q", snap.Role)
	}
	if snap.Loading {
		t.Fatalf("expected loading false once role resolved")
	}
	if !snap.IsAuthenticated() {
		t.Fatalf("expected authenticated snapshot")
	}
}

func TestMachineChangeEventSupersedesInitialFetch(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.current = sessionFor(RoleCustomer, provider)
	sched := &syncScheduler{}
	m := newTestMachine(provider, sched, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.Stop()

	// sign-out arrives before the startup fetch ran
	provider.Publish(nil)
	sched.Drain()

	snap := m.Snapshot()
	if snap.Phase != PhaseUnauthenticated || snap.Session != nil {
		t.Fatalf("expected stale initial fetch to be discarded, got %+v", snap)
	}
}

func TestMachineSignInThenSignOut(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	sched := &syncScheduler{}
	m := newTestMachine(provider, sched, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.Stop()
	sched.Drain()

	provider.Publish(sessionFor(RoleSupplier, provider))

	// the change handler assigns state synchronously; the lookup is deferred
	// and the snapshot is already not loading while it runs
	snap := m.Snapshot()
	if snap.Phase != PhaseRolePending || snap.Loading {
		t.Fatalf("expected role-pending snapshot before drain, got %+v", snap)
	}

	sched.Drain()
	snap = m.Snapshot()
	if !snap.IsSupplier() || snap.Phase != PhaseResolved {
		t.Fatalf("expected resolved supplier, got %+v", snap)
	}

	provider.Publish(nil)
	sched.Drain()
	snap = m.Snapshot()
	if snap.Phase != PhaseUnauthenticated || snap.Role != RoleUnknown || snap.User != nil {
		t.Fatalf("expected signed-out snapshot, got %+v", snap)
	}
}

func TestMachineStaleRoleLookupDiscarded(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	sched := &syncScheduler{}
	m := newTestMachine(provider, sched, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.Stop()
	sched.Drain()

	first := sessionFor(RoleCustomer, provider)
	second := sessionFor(RoleAdmin, provider)

	// two sign-ins before either lookup runs; the first lookup is stale
	provider.Publish(first)
	provider.Publish(second)
	sched.Drain()

	snap := m.Snapshot()
	if !snap.IsAdmin() {
		t.Fatalf("expected the newer session's role, got %q", snap.Role)
	}
	if snap.User.ID != second.User.ID {
		t.Fatalf("expected second user to win")
	}
}

func TestMachineRoleLookupFailureDegrades(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.roleErr = errors.New("users table unavailable")
	sched := &syncScheduler{}
	m := newTestMachine(provider, sched, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.Stop()
	sched.Drain()

	provider.Publish(sessionFor(RoleCustomer, provider))
	sched.Drain()

	snap := m.Snapshot()
	if snap.Phase != PhaseResolved {
		t.Fatalf("expected resolved phase despite lookup failure, got %s", snap.Phase)
	}
	if snap.Role != RoleUnknown {
		t.Fatalf("expected role unknown after lookup failure, got %q", snap.Role)
	}
	if snap.Loading {
		t.Fatalf("expected loading false after lookup failure")
	}
	if !snap.IsAuthenticated() {
		t.Fatalf("expected session kept despite lookup failure")
	}
}

func TestMachineInitialFetchFailureDegrades(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.fetchErr = errors.New("identity backend down")
	sched := &syncScheduler{}
	m := newTestMachine(provider, sched, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.Stop()
	sched.Drain()

	snap := m.Snapshot()
	if snap.Phase != PhaseUnauthenticated || snap.Loading {
		t.Fatalf("expected degraded signed-out snapshot, got %+v", snap)
	}
}

func TestMachineSignInClearsLoadingBeforeRoleResolves(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	sched := &syncScheduler{}
	m := newTestMachine(provider, sched, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.Stop()
	sched.Drain()

	provider.Publish(sessionFor(RoleCustomer, provider))

	snap := m.Snapshot()
	if snap.Phase != PhaseRolePending {
		t.Fatalf("expected role-pending, got %s", snap.Phase)
	}
	if snap.Loading {
		t.Fatalf("expected loading false while the role lookup is pending, got %+v", snap)
	}
}

func TestMachineSignInDuringStartupFetchWins(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	sched := &syncScheduler{}
	m := newTestMachine(provider, sched, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.Stop()

	// a sign-in lands while the startup fetch is in flight; the fetch result
	// is stale and must never overwrite it
	fresh := sessionFor(RoleAdmin, provider)
	provider.fetchHook = func() { provider.Publish(fresh) }
	sched.Drain()

	snap := m.Snapshot()
	if snap.User == nil || snap.User.ID != fresh.User.ID {
		t.Fatalf("expected the sign-in to win over the stale fetch, got %+v", snap)
	}
	if snap.Phase != PhaseResolved || !snap.IsAdmin() {
		t.Fatalf("expected resolved admin snapshot, got %+v", snap)
	}
}

func TestMachineFallbackForcesLoadingFalse(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.current = sessionFor(RoleCustomer, provider)
	sched := &syncScheduler{}
	m := newTestMachine(provider, sched, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.Stop()

	// startup fetch never drained; the fallback must unstick loading
	m.apply(context.Background(), fallbackTimeout{})

	snap := m.Snapshot()
	if snap.Loading {
		t.Fatalf("expected fallback to force loading false")
	}
	if snap.Phase != PhaseInitializing {
		t.Fatalf("expected phase unchanged by fallback, got %s", snap.Phase)
	}

	// a late fetch can still complete afterwards
	sched.Drain()
	snap = m.Snapshot()
	if !snap.IsCustomer() {
		t.Fatalf("expected late role resolution, got %q", snap.Role)
	}
}

func TestMachineStopUnsubscribesOnce(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	sched := &syncScheduler{}
	m := newTestMachine(provider, sched, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	sched.Drain()

	m.Stop()
	m.Stop()

	if provider.unsubCalls != 1 {
		t.Fatalf("expected exactly one unsubscribe, got %d", provider.unsubCalls)
	}

	before := m.Snapshot()
	provider.Publish(sessionFor(RoleCustomer, provider))
	sched.Drain()
	if after := m.Snapshot(); after != before {
		t.Fatalf("expected events after Stop to be ignored")
	}
}

func TestMachineOnChangeSeesEveryTransition(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	sched := &syncScheduler{}

	var mu sync.Mutex
	var phases []Phase
	var m *Machine
	m = newTestMachine(provider, sched, func(snap Snapshot) {
		// Snapshot() must not deadlock from inside the callback
		_ = m.Snapshot()
		mu.Lock()
		phases = append(phases, snap.Phase)
		mu.Unlock()
	})

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.Stop()
	sched.Drain()

	provider.Publish(sessionFor(RoleCustomer, provider))
	sched.Drain()

	mu.Lock()
	defer mu.Unlock()
	want := []Phase{PhaseUnauthenticated, PhaseRolePending, PhaseResolved}
	if len(phases) != len(want) {
		t.Fatalf("expected %d transitions, got %v", len(want), phases)
	}
	for i, phase := range want {
		if phases[i] != phase {
			t.Fatalf("expected transition %d to be %s, got %s", i, phase, phases[i])
		}
	}
}
