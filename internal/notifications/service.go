package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
	"github.com/karimelbaz/sallati-backend/pkg/pagination"
)

type repo interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	HasKind(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind) (bool, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// InboxPage is one page of a user's notifications.
type InboxPage struct {
	Notifications []models.Notification
	NextCursor    string
	UnreadCount   int64
}

// Service manages the per-user notification inbox.
type Service struct {
	repo repo
	now  func() time.Time
}

func NewService(repo repo) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Notify appends an entry to the user's inbox.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, title, body string) (*models.Notification, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	notification := &models.Notification{
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// HasKind reports whether the user's inbox already holds an entry of the kind.
func (s *Service) HasKind(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind) (bool, error) {
	return s.repo.HasKind(ctx, userID, kind)
}

// List pages the inbox and reports the unread badge count.
func (s *Service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*InboxPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListForUser(ctx, userID, limit, cursor)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	page := &InboxPage{Notifications: rows, UnreadCount: unread}
	if len(rows) > limit {
		page.Notifications = rows[:limit]
		last := page.Notifications[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// MarkRead marks a single inbox entry as read.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, notificationID, s.now())
}

// MarkAllRead clears the unread badge.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID, s.now())
}
