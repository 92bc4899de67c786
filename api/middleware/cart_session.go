package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

// CartSession identifies the UI session a cart belongs to. Clients echo the
// X-Session-Id header back; a request without one gets a fresh id minted so
// the cart scope can be created on first use.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if sessionID == "" || uuid.Validate(sessionID) != nil {
				sessionID = uuid.NewString()
			}

			w.Header().Set(sessionIDHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
