package repository

import (
	"context"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// LikeRepository persists (user, post) like pairs. A second Create for the
// same pair fails with a conflict.
type LikeRepository interface {
	Exists(ctx context.Context, userID, postID uint) (bool, error)
	Create(ctx context.Context, userID, postID uint) error
	Delete(ctx context.Context, userID, postID uint) (int64, error)
	DeleteByPost(ctx context.Context, postID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, translateError("check like", err)
	}
	return count > 0, nil
}

func (r *likeRepository) Create(ctx context.Context, userID, postID uint) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
		return translateError("create like", err)
	}
	return nil
}

// Delete removes the pair and reports how many rows went away.
func (r *likeRepository) Delete(ctx context.Context, userID, postID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return 0, translateError("delete like", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *likeRepository) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{})
	if result.Error != nil {
		return 0, translateError("delete likes", result.Error)
	}
	return result.RowsAffected, nil
}
