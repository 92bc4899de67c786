package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/api/validators"
	"github.com/karimelbaz/sallati-backend/internal/notify"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
	"github.com/karimelbaz/sallati-backend/pkg/logger"
)

type notifySupplierRequest struct {
	SupplierID uuid.UUID `json:"supplier_id" validate:"required"`
	Action     string    `json:"action" validate:"required,oneof=approve approved reject rejected"`
	AdminEmail string    `json:"admin_email,omitempty" validate:"omitempty,email"`
	Reason     string    `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// functionResult is the envelope the function routes use. It differs from
// the standard API envelope to stay compatible with the admin tooling that
// calls these endpoints.
type functionResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// NotifySupplier applies an approve/reject decision to a supplier and fans
// out the owner notification.
func NotifySupplier(svc *notify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notifySupplierRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeFunctionError(r, logg, w, err)
			return
		}

		result, err := svc.NotifySupplierDecision(r.Context(), notify.Input{
			SupplierID: req.SupplierID,
			Action:     req.Action,
			AdminEmail: req.AdminEmail,
			Reason:     req.Reason,
		})
		if err != nil {
			writeFunctionError(r, logg, w, err)
			return
		}

		writeFunctionJSON(w, http.StatusOK, functionResult{
			Success: true,
			Message: result.Message,
			Details: result.Details,
		})
	}
}

func writeFunctionError(r *http.Request, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if typed.Code() != pkgerrors.CodeInternal && typed.Message() != "" {
		msg = typed.Message()
	}

	if logg != nil {
		logg.Error(r.Context(), "function.error", err)
	}

	writeFunctionJSON(w, meta.HTTPStatus, functionResult{
		Success: false,
		Error:   msg,
	})
}

func writeFunctionJSON(w http.ResponseWriter, status int, payload functionResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode function response","err":"%v"}`, err)
	}
}
