package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
	"github.com/karimelbaz/sallati-backend/pkg/logger"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type supplierStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SupplierStatus) error
}

type inbox interface {
	Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, title, body string) (*models.Notification, error)
}

// Input is the decision payload for the supplier review function. Action
// accepts both the imperative and past-tense token for each decision.
type Input struct {
	SupplierID uuid.UUID
	Action     string
	AdminEmail string
	Reason     string
}

// Result reports what the function did.
type Result struct {
	Message string
	Details map[string]any
}

// Service applies a supplier review decision: it flips the supplier status,
// drops an inbox notification for the owner, and records the outbound email
// intent. Inbox failures degrade to a logged warning so the status change is
// never rolled back by a notification problem.
type Service struct {
	suppliers supplierStore
	inbox     inbox
	logg      *logger.Logger
}

func NewService(suppliers supplierStore, inbox inbox, logg *logger.Logger) *Service {
	return &Service{
		suppliers: suppliers,
		inbox:     inbox,
		logg:      logg,
	}
}

// NotifySupplierDecision executes one review decision.
func (s *Service) NotifySupplierDecision(ctx context.Context, input Input) (*Result, error) {
	action := normalizeAction(input.Action)
	if action == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action must be approved or rejected").
			WithDetails(map[string]any{"action": input.Action})
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier_id is required")
	}

	supplier, err := s.suppliers.FindByID(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}

	status := enums.SupplierStatusApproved
	kind := enums.NotificationSupplierApproved
	if action == ActionReject {
		status = enums.SupplierStatusRejected
		kind = enums.NotificationSupplierRejected
	}

	if supplier.Status == status {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("supplier already %s", status)).
			WithDetails(map[string]any{"status": supplier.Status.String()})
	}

	if err := s.suppliers.UpdateStatus(ctx, supplier.ID, status); err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"supplier_id": supplier.ID.String(),
		"action":      action,
	})

	title, body := decisionCopy(status, supplier, input.Reason)
	if supplier.Owner != nil {
		if _, err := s.inbox.Notify(ctx, supplier.OwnerUserID, kind, title, body); err != nil {
			s.logg.Warn(ctx, "supplier decision inbox write failed")
		}
	} else {
		s.logg.Warn(ctx, "supplier has no owner account; skipping inbox notification")
	}

	// outbound email goes through a provider later; record the intent for now
	emailCtx := s.logg.WithField(ctx, "email", supplier.Email)
	if input.AdminEmail != "" {
		emailCtx = s.logg.WithField(emailCtx, "admin_email", input.AdminEmail)
	}
	s.logg.Info(emailCtx, "supplier decision email queued")

	details := map[string]any{
		"supplier_id": supplier.ID.String(),
		"status":      status.String(),
		"email":       supplier.Email,
	}
	if input.AdminEmail != "" {
		details["admin_email"] = input.AdminEmail
	}
	if input.Reason != "" {
		details["reason"] = input.Reason
	}

	return &Result{
		Message: fmt.Sprintf("supplier %s", statusVerb(status)),
		Details: details,
	}, nil
}

// normalizeAction folds the accepted action spellings onto the canonical
// tokens. Unknown input returns the empty string.
func normalizeAction(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ActionApprove, "approved":
		return ActionApprove
	case ActionReject, "rejected":
		return ActionReject
	}
	return ""
}

func decisionCopy(status enums.SupplierStatus, supplier *models.Supplier, reason string) (string, string) {
	name := supplier.Name.EN
	if name == "" {
		name = supplier.Name.AR
	}

	if status == enums.SupplierStatusApproved {
		return "Storefront approved",
			fmt.Sprintf("%s has been approved and is now visible to customers.", name)
	}

	body := fmt.Sprintf("%s was not approved.", name)
	if reason != "" {
		body = fmt.Sprintf("%s Reason: %s", body, reason)
	}
	return "Storefront rejected", body
}

func statusVerb(status enums.SupplierStatus) string {
	if status == enums.SupplierStatusApproved {
		return "approved"
	}
	return "rejected"
}
