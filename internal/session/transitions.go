package session

// event is an input to the tracker's reducer.
type event interface{ isEvent() }

// sessionChanged carries a session change pushed by the provider. A nil
// session means sign-out.
type sessionChanged struct {
	session *Session
}

// initialSession carries the result of the startup fetch.
type initialSession struct {
	session *Session
	err     error
}

// roleResolved carries the outcome of a deferred role lookup.
type roleResolved struct {
	role Role
	err  error
}

// fallbackTimeout fires when the loading fallback timer elapses.
type fallbackTimeout struct{}

func (sessionChanged) isEvent()  {}
func (initialSession) isEvent()  {}
func (roleResolved) isEvent()    {}
func (fallbackTimeout) isEvent() {}

// effect names follow-up work the caller must schedule after applying an
// event. The reducer itself never performs I/O.
type effect int

const (
	effectNone effect = iota
	effectFetchRole
)

// reduce applies one event to the snapshot and returns the next snapshot plus
// any side effect to schedule. It is a pure function so every transition can
// be tested without goroutines or timers.
func reduce(snap Snapshot, ev event) (Snapshot, effect) {
	switch e := ev.(type) {
	case sessionChanged:
		return applySession(snap, e.session)

	case initialSession:
		if e.err != nil {
			// fetch failure degrades to signed-out rather than blocking the UI
			snap.Phase = PhaseUnauthenticated
			snap.Session = nil
			snap.User = nil
			snap.Role = RoleUnknown
			snap.Loading = false
			return snap, effectNone
		}
		return applySession(snap, e.session)

	case roleResolved:
		if snap.Phase != PhaseRolePending {
			return snap, effectNone
		}
		snap.Phase = PhaseResolved
		snap.Loading = false
		if e.err == nil {
			snap.Role = e.role
		}
		return snap, effectNone

	case fallbackTimeout:
		snap.Loading = false
		return snap, effectNone
	}

	return snap, effectNone
}

func applySession(snap Snapshot, sess *Session) (Snapshot, effect) {
	if sess == nil || sess.User == nil {
		snap.Phase = PhaseUnauthenticated
		snap.Session = nil
		snap.User = nil
		snap.Role = RoleUnknown
		snap.Loading = false
		return snap, effectNone
	}

	snap.Phase = PhaseRolePending
	snap.Session = sess
	snap.User = sess.User
	snap.Role = RoleUnknown
	snap.Loading = false
	return snap, effectFetchRole
}
