package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
	"github.com/karimelbaz/sallati-backend/pkg/logger"
)

const supplierReminderDays = 3

type pendingSupplierLister interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Supplier, error)
}

type reminderInbox interface {
	Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, title, body string) (*models.Notification, error)
	HasKind(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind) (bool, error)
}

// SupplierReminderJobParams configure the pending-supplier reminder job.
type SupplierReminderJobParams struct {
	Logger    *logger.Logger
	Suppliers pendingSupplierLister
	Inbox     reminderInbox
	AfterDays int
}

// NewSupplierReminderJob builds the job that tells supplier owners their
// application is still under review once it has been pending long enough.
// Each owner is reminded at most once.
func NewSupplierReminderJob(params SupplierReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Suppliers == nil {
		return nil, fmt.Errorf("suppliers repository required")
	}
	if params.Inbox == nil {
		return nil, fmt.Errorf("inbox service required")
	}
	afterDays := params.AfterDays
	if afterDays <= 0 {
		afterDays = supplierReminderDays
	}
	return &supplierReminderJob{
		logg:      params.Logger,
		suppliers: params.Suppliers,
		inbox:     params.Inbox,
		afterDays: afterDays,
		now:       time.Now,
	}, nil
}

type supplierReminderJob struct {
	logg      *logger.Logger
	suppliers pendingSupplierLister
	inbox     reminderInbox
	afterDays int
	now       func() time.Time
}

func (j *supplierReminderJob) Name() string { return "supplier-pending-reminder" }

func (j *supplierReminderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.afterDays) * 24 * time.Hour)
	pending, err := j.suppliers.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list pending suppliers: %w", err)
	}

	var sent int
	for _, supplier := range pending {
		reminded, err := j.inbox.HasKind(ctx, supplier.OwnerUserID, enums.NotificationSupplierPending)
		if err != nil {
			j.logg.Error(ctx, "failed to check reminder state", err)
			continue
		}
		if reminded {
			continue
		}
		_, err = j.inbox.Notify(ctx, supplier.OwnerUserID, enums.NotificationSupplierPending,
			"Application under review",
			"Your supplier application is still being reviewed. We will notify you once a decision is made.")
		if err != nil {
			j.logg.Error(ctx, "failed to write pending reminder", err)
			continue
		}
		sent++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"pending_count":  len(pending),
		"reminders_sent": sent,
	})
	j.logg.Info(logCtx, "supplier reminder sweep complete")
	return nil
}
