package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/api/responses"
	"github.com/karimelbaz/sallati-backend/internal/session"
)

type sessionUserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type sessionResponse struct {
	Phase         string               `json:"phase"`
	Loading       bool                 `json:"loading"`
	Authenticated bool                 `json:"authenticated"`
	Role          string               `json:"role,omitempty"`
	User          *sessionUserResponse `json:"user,omitempty"`
}

// SessionState exposes the tracker snapshot to clients polling their
// auth/role state.
func SessionState(machine *session.Machine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := machine.Snapshot()

		resp := sessionResponse{
			Phase:         string(snap.Phase),
			Loading:       snap.Loading,
			Authenticated: snap.IsAuthenticated(),
			Role:          string(snap.Role),
		}
		if snap.User != nil {
			resp.User = &sessionUserResponse{
				ID:    snap.User.ID,
				Email: snap.User.Email,
			}
		}

		responses.WriteSuccess(w, resp)
	}
}
