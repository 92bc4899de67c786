package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
	"github.com/karimelbaz/sallati-backend/pkg/logger"
	"github.com/karimelbaz/sallati-backend/pkg/types"
)

type stubSuppliers struct {
	supplier  *models.Supplier
	findErr   error
	updated   []enums.SupplierStatus
	updateErr error
}

func (s *stubSuppliers) FindByID(context.Context, uuid.UUID) (*models.Supplier, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.supplier, nil
}

func (s *stubSuppliers) UpdateStatus(_ context.Context, _ uuid.UUID, status enums.SupplierStatus) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, status)
	return nil
}

type stubInbox struct {
	kinds []enums.NotificationKind
	err   error
}

func (s *stubInbox) Notify(_ context.Context, userID uuid.UUID, kind enums.NotificationKind, title, body string) (*models.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.kinds = append(s.kinds, kind)
	return &models.Notification{ID: uuid.New(), UserID: userID, Kind: kind, Title: title, Body: body}, nil
}

func pendingSupplier() *models.Supplier {
	ownerID := uuid.New()
	return &models.Supplier{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		Name:        types.LocalizedText{EN: "Fresh Farm", AR: "مزرعة طازجة"},
		Email:       "owner@freshfarm.example",
		Status:      enums.SupplierStatusPending,
		Owner:       &models.User{ID: ownerID, Email: "owner@freshfarm.example"},
	}
}

func newTestService(suppliers *stubSuppliers, inbox *stubInbox) *Service {
	return NewService(suppliers, inbox, logger.New(logger.Options{ServiceName: "test"}))
}

func TestNotifySupplierDecisionApproves(t *testing.T) {
	t.Parallel()

	suppliers := &stubSuppliers{supplier: pendingSupplier()}
	inbox := &stubInbox{}
	svc := newTestService(suppliers, inbox)

	result, err := svc.NotifySupplierDecision(context.Background(), Input{
		SupplierID: suppliers.supplier.ID,
		Action:     "approve",
	})
	if err != nil {
		t.Fatalf("NotifySupplierDecision returned error: %v", err)
	}
	if result.Message != "supplier approved" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if result.Details["status"] != "approved" {
		t.Fatalf("expected status detail approved, got %v", result.Details["status"])
	}
	if len(suppliers.updated) != 1 || suppliers.updated[0] != enums.SupplierStatusApproved {
		t.Fatalf("expected status update to approved, got %v", suppliers.updated)
	}
	if len(inbox.kinds) != 1 || inbox.kinds[0] != enums.NotificationSupplierApproved {
		t.Fatalf("expected approved inbox notification, got %v", inbox.kinds)
	}
}

func TestNotifySupplierDecisionRejectsWithReason(t *testing.T) {
	t.Parallel()

	suppliers := &stubSuppliers{supplier: pendingSupplier()}
	inbox := &stubInbox{}
	svc := newTestService(suppliers, inbox)

	result, err := svc.NotifySupplierDecision(context.Background(), Input{
		SupplierID: suppliers.supplier.ID,
		Action:     "REJECT",
		Reason:     "missing trade license",
	})
	if err != nil {
		t.Fatalf("NotifySupplierDecision returned error: %v", err)
	}
	if result.Details["reason"] != "missing trade license" {
		t.Fatalf("expected reason detail, got %v", result.Details)
	}
	if len(inbox.kinds) != 1 || inbox.kinds[0] != enums.NotificationSupplierRejected {
		t.Fatalf("expected rejected inbox notification, got %v", inbox.kinds)
	}
}

func TestNotifySupplierDecisionAcceptsBothTokenForms(t *testing.T) {
	t.Parallel()

	cases := map[string]enums.SupplierStatus{
		"approved": enums.SupplierStatusApproved,
		"rejected": enums.SupplierStatusRejected,
		"approve":  enums.SupplierStatusApproved,
	}
	for action, want := range cases {
		suppliers := &stubSuppliers{supplier: pendingSupplier()}
		svc := newTestService(suppliers, &stubInbox{})

		if _, err := svc.NotifySupplierDecision(context.Background(), Input{
			SupplierID: suppliers.supplier.ID,
			Action:     action,
		}); err != nil {
			t.Fatalf("action %q returned error: %v", action, err)
		}
		if len(suppliers.updated) != 1 || suppliers.updated[0] != want {
			t.Fatalf("action %q: expected status %s, got %v", action, want, suppliers.updated)
		}
	}
}

func TestNotifySupplierDecisionCarriesAdminEmail(t *testing.T) {
	t.Parallel()

	suppliers := &stubSuppliers{supplier: pendingSupplier()}
	svc := newTestService(suppliers, &stubInbox{})

	result, err := svc.NotifySupplierDecision(context.Background(), Input{
		SupplierID: suppliers.supplier.ID,
		Action:     "approved",
		AdminEmail: "ops@sallati.example",
	})
	if err != nil {
		t.Fatalf("NotifySupplierDecision returned error: %v", err)
	}
	if result.Details["admin_email"] != "ops@sallati.example" {
		t.Fatalf("expected admin email in details, got %v", result.Details)
	}
}

func TestNotifySupplierDecisionInvalidAction(t *testing.T) {
	t.Parallel()

	svc := newTestService(&stubSuppliers{supplier: pendingSupplier()}, &stubInbox{})
	_, err := svc.NotifySupplierDecision(context.Background(), Input{
		SupplierID: uuid.New(),
		Action:     "escalate",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNotifySupplierDecisionAlreadyDecided(t *testing.T) {
	t.Parallel()

	supplier := pendingSupplier()
	supplier.Status = enums.SupplierStatusApproved
	svc := newTestService(&stubSuppliers{supplier: supplier}, &stubInbox{})

	_, err := svc.NotifySupplierDecision(context.Background(), Input{
		SupplierID: supplier.ID,
		Action:     "approve",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestNotifySupplierDecisionInboxFailureDoesNotFail(t *testing.T) {
	t.Parallel()

	suppliers := &stubSuppliers{supplier: pendingSupplier()}
	inbox := &stubInbox{err: errors.New("inbox down")}
	svc := newTestService(suppliers, inbox)

	result, err := svc.NotifySupplierDecision(context.Background(), Input{
		SupplierID: suppliers.supplier.ID,
		Action:     "approve",
	})
	if err != nil {
		t.Fatalf("expected decision to succeed despite inbox failure, got %v", err)
	}
	if len(suppliers.updated) != 1 {
		t.Fatalf("expected status update to stick")
	}
	if result.Details["status"] != "approved" {
		t.Fatalf("expected approved status in details")
	}
}
