package session

import "github.com/google/uuid"

// Role is the resolved storefront role for an authenticated user.
type Role string

const (
	RoleUnknown  Role = ""
	RoleCustomer Role = "customer"
	RoleSupplier Role = "supplier"
	RoleAdmin    Role = "admin"
)

// User identifies the account behind a session.
type User struct {
	ID    uuid.UUID
	Email string
}

// Session is what the identity provider reports for the current client.
type Session struct {
	AccessToken string
	User        *User
}

// Phase names the tracker's position in its lifecycle.
type Phase string

const (
	PhaseInitializing    Phase = "initializing"
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseRolePending     Phase = "role_pending"
	PhaseResolved        Phase = "resolved"
)

// Snapshot is the tracker's externally visible state. Loading is true only
// while the startup fetch is outstanding; once the session is known the
// snapshot stops loading even if the role lookup is still pending.
type Snapshot struct {
	Phase   Phase
	Session *Session
	User    *User
	Role    Role
	Loading bool
}

// IsAuthenticated reports whether a session with a user is present.
func (s Snapshot) IsAuthenticated() bool {
	return s.Session != nil && s.User != nil
}

func (s Snapshot) IsCustomer() bool { return s.Role == RoleCustomer }
func (s Snapshot) IsSupplier() bool { return s.Role == RoleSupplier }
func (s Snapshot) IsAdmin() bool    { return s.Role == RoleAdmin }
