package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/karimelbaz/sallati-backend/pkg/logger"
)

func TestInboxCleanupJobDeletesReadEntriesPastRetention(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	repo := &fakeInboxRepo{deletedRows: 42}
	job := newInboxCleanupJob(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().Add(-inboxRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestInboxCleanupJobPropagatesErrors(t *testing.T) {
	repo := &fakeInboxRepo{err: errors.New("boom")}
	job := newInboxCleanupJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newInboxCleanupJob(t *testing.T, repo *fakeInboxRepo) *inboxCleanupJob {
	t.Helper()
	jobIface, err := NewInboxCleanupJob(InboxCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         fakeTxRunner{},
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewInboxCleanupJob: %v", err)
	}
	job, ok := jobIface.(*inboxCleanupJob)
	if !ok {
		t.Fatalf("expected inboxCleanupJob, got %T", jobIface)
	}
	return job
}

type fakeInboxRepo struct {
	lastCutoff  time.Time
	deletedRows int64
	err         error
	called      int
}

func (f *fakeInboxRepo) DeleteReadBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deletedRows, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
