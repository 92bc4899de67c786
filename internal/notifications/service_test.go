package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
	"github.com/karimelbaz/sallati-backend/pkg/pagination"
)

type stubRepo struct {
	created []models.Notification
	rows    []models.Notification
	unread  int64

	lastLimit  int
	lastCursor *pagination.Cursor
	readIDs    []uuid.UUID
	allReadFor []uuid.UUID
}

func (s *stubRepo) Create(_ context.Context, notification *models.Notification) error {
	notification.ID = uuid.New()
	notification.CreatedAt = time.Now().UTC()
	s.created = append(s.created, *notification)
	return nil
}

func (s *stubRepo) ListForUser(_ context.Context, _ uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Notification, error) {
	s.lastLimit = limit
	s.lastCursor = cursor
	max := limit + 1
	if max > len(s.rows) {
		max = len(s.rows)
	}
	return s.rows[:max], nil
}

func (s *stubRepo) CountUnread(context.Context, uuid.UUID) (int64, error) {
	return s.unread, nil
}

func (s *stubRepo) HasKind(_ context.Context, userID uuid.UUID, kind enums.NotificationKind) (bool, error) {
	for _, row := range s.created {
		if row.UserID == userID && row.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) MarkRead(_ context.Context, _ uuid.UUID, notificationID uuid.UUID, _ time.Time) error {
	s.readIDs = append(s.readIDs, notificationID)
	return nil
}

func (s *stubRepo) MarkAllRead(_ context.Context, userID uuid.UUID, _ time.Time) error {
	s.allReadFor = append(s.allReadFor, userID)
	return nil
}

func makeRows(n int) []models.Notification {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.Notification, n)
	for i := range rows {
		rows[i] = models.Notification{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			Kind:      enums.NotificationPromo,
			Title:     "title",
			Body:      "body",
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return rows
}

func TestNotifyRequiresUser(t *testing.T) {
	t.Parallel()

	svc := NewService(&stubRepo{})
	_, err := svc.Notify(context.Background(), uuid.Nil, enums.NotificationPromo, "t", "b")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNotifyCreatesInboxEntry(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := NewService(repo)

	userID := uuid.New()
	created, err := svc.Notify(context.Background(), userID, enums.NotificationSupplierApproved, "Approved", "Your storefront is live")
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if created.UserID != userID || created.Kind != enums.NotificationSupplierApproved {
		t.Fatalf("unexpected created notification: %+v", created)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 row created, got %d", len(repo.created))
	}
}

func TestListPagesInbox(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{rows: makeRows(4), unread: 2}
	svc := NewService(repo)

	page, err := svc.List(context.Background(), uuid.New(), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Notifications) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page.Notifications))
	}
	if page.NextCursor == "" {
		t.Fatalf("expected next cursor when more rows exist")
	}
	if page.UnreadCount != 2 {
		t.Fatalf("expected unread count 2, got %d", page.UnreadCount)
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	t.Parallel()

	svc := NewService(&stubRepo{})
	_, err := svc.List(context.Background(), uuid.New(), pagination.Params{Cursor: "not-base64!!"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad cursor, got %v", err)
	}
}
