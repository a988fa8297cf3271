package repository

import (
	"context"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, userID uint) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID uint, ids []uint) (int64, error)
	DeleteForPost(ctx context.Context, postID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Omit("User", "Creator", "Post", "Comment").Create(n).Error; err != nil {
		return translateError("create notification", err)
	}
	return nil
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, userID uint) ([]models.Notification, error) {
	var items []models.Notification
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Post").
		Preload("Comment").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, translateError("list notifications", err)
	}
	return items, nil
}

// MarkRead flags ids as read. A zero recipientID skips the ownership filter.
// Unknown ids are ignored.
func (r *notificationRepository) MarkRead(ctx context.Context, recipientID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id IN ?", ids)
	if recipientID != 0 {
		q = q.Where("user_id = ?", recipientID)
	}
	result := q.Update("read", true)
	if result.Error != nil {
		return 0, translateError("mark notifications read", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteForPost removes notifications that point at the post or at any of
// its comments. It must run before the comments themselves are removed.
func (r *notificationRepository) DeleteForPost(ctx context.Context, postID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("post_id = ? OR comment_id IN (?)", postID,
			r.db.Session(&gorm.Session{NewDB: true}).Model(&models.Comment{}).Select("id").Where("post_id = ?", postID)).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, translateError("delete notifications", result.Error)
	}
	return result.RowsAffected, nil
}
