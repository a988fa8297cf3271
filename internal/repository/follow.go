package repository

import (
	"context"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// FollowRepository persists directed follow edges.
type FollowRepository interface {
	Exists(ctx context.Context, followerID, followingID uint) (bool, error)
	Create(ctx context.Context, followerID, followingID uint) error
	Delete(ctx context.Context, followerID, followingID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, translateError("check follow", err)
	}
	return count > 0, nil
}

func (r *followRepository) Create(ctx context.Context, followerID, followingID uint) error {
	edge := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := r.db.WithContext(ctx).Omit("Follower", "Following").Create(edge).Error; err != nil {
		return translateError("create follow", err)
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return 0, translateError("delete follow", result.Error)
	}
	return result.RowsAffected, nil
}
