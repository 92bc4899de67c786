package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimelbaz/sallati-backend/pkg/db"
	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
	"github.com/karimelbaz/sallati-backend/pkg/pagination"
)

// Repo provides persistence for the user notification inbox.
type Repo struct {
	client *db.Client
}

func NewRepo(client *db.Client) *Repo {
	return &Repo{client: client}
}

// Create inserts an inbox entry.
func (r *Repo) Create(ctx context.Context, notification *models.Notification) error {
	if err := r.client.DB().WithContext(ctx).Create(notification).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating notification")
	}
	return nil
}

// ListForUser pages the user's inbox, newest first, fetching limit+1 rows.
func (r *Repo) ListForUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Notification, error) {
	query := r.client.DB().WithContext(ctx).
		Where("user_id = ?", userID)

	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Notification
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing notifications")
	}
	return rows, nil
}

// CountUnread returns the badge count for the user.
func (r *Repo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.client.DB().WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting unread notifications")
	}
	return count, nil
}

// MarkRead stamps one notification as read if it belongs to the user.
func (r *Repo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, at time.Time) error {
	result := r.client.DB().WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", at)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "marking notification read")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

// HasKind reports whether the user already has at least one entry of the kind.
func (r *Repo) HasKind(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind) (bool, error) {
	var count int64
	err := r.client.DB().WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking notification kind")
	}
	return count > 0, nil
}

// DeleteReadBefore purges read notifications created before the cutoff and
// returns the number of rows removed.
func (r *Repo) DeleteReadBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	db := tx
	if db == nil {
		db = r.client.DB()
	}
	result := db.WithContext(ctx).
		Where("read_at IS NOT NULL AND created_at < ?", cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "deleting read notifications")
	}
	return result.RowsAffected, nil
}

// MarkAllRead stamps every unread notification for the user.
func (r *Repo) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) error {
	err := r.client.DB().WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking notifications read")
	}
	return nil
}
