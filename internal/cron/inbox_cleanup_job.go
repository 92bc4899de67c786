package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/karimelbaz/sallati-backend/pkg/logger"
)

const inboxRetentionDays = 30

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type inboxCleanupRepo interface {
	DeleteReadBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// InboxCleanupJobParams configure the inbox cleanup job.
type InboxCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository inboxCleanupRepo
	Retention  int
}

// NewInboxCleanupJob builds the job that purges read notifications past the
// retention window. Unread entries are kept indefinitely.
func NewInboxCleanupJob(params InboxCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = inboxRetentionDays
	}
	return &inboxCleanupJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type inboxCleanupJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      inboxCleanupRepo
	retention int
	now       func() time.Time
}

func (j *inboxCleanupJob) Name() string { return "inbox-cleanup" }

func (j *inboxCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteReadBefore(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("inbox cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "inbox cleanup complete")
	return nil
}
