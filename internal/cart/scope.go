package cart

import "sync"

// Scope tracks one live cart per UI session. Carts are created on first use
// and destroyed when the session ends; a destroyed cart stays readable as a
// handle but reports ErrScopeReleased.
type Scope struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewScope() *Scope {
	return &Scope{
		carts: make(map[string]*Cart),
	}
}

// Cart returns the live cart for the session, creating it on first use.
func (s *Scope) Cart(sessionID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.carts[sessionID]; ok {
		return existing
	}
	created := newCart()
	s.carts[sessionID] = created
	return created
}

// Peek returns the session's cart without creating one.
func (s *Scope) Peek(sessionID string) (*Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[sessionID]
	return c, ok
}

// Release ends the session's cart scope. Held references observe the
// released state; a later Cart call for the same session starts fresh.
func (s *Scope) Release(sessionID string) {
	s.mu.Lock()
	existing, ok := s.carts[sessionID]
	delete(s.carts, sessionID)
	s.mu.Unlock()
	if ok {
		existing.release()
	}
}
