// Package repository implements the data access layer for the application.
// Every method returns errors already classified as models.AppError.
package repository

import (
	"context"
	"errors"
	"time"

	"pulse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name     string
	Bio      string
	Location string
	Website  string
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*models.User, error)
	Counts(ctx context.Context, id uint) (models.UserCounts, error)
	Suggestions(ctx context.Context, userID uint, limit int) ([]models.Suggestion, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound("User", id, err)
	}
	return &user, nil
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, notFound("User", externalID, err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessage("User " + username + " not found")
		}
		return nil, translateError("load user by username", err)
	}
	return &user, nil
}

// Upsert inserts the user or refreshes the identity-provider fields of the
// row sharing its external id. Profile fields edited by the user are kept.
// A username owned by a different external id surfaces as a conflict.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "username", "image", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return translateError("upsert user", err)
	}
	// The conflict path does not report the existing id on every dialect.
	if err := r.db.WithContext(ctx).Where("external_id = ?", user.ExternalID).First(user).Error; err != nil {
		return translateError("reload user", err)
	}
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*models.User, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":       update.Name,
		"bio":        update.Bio,
		"location":   update.Location,
		"website":    update.Website,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return nil, translateError("update profile", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, models.NewNotFoundError("User", id)
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) Counts(ctx context.Context, id uint) (models.UserCounts, error) {
	var counts models.UserCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Follow{}).Where("following_id = ?", id).Count(&counts.Followers).Error; err != nil {
		return counts, translateError("count followers", err)
	}
	if err := db.Model(&models.Follow{}).Where("follower_id = ?", id).Count(&counts.Following).Error; err != nil {
		return counts, translateError("count following", err)
	}
	if err := db.Model(&models.Post{}).Where("author_id = ?", id).Count(&counts.Posts).Error; err != nil {
		return counts, translateError("count posts", err)
	}
	return counts, nil
}

const suggestionsSQL = `
SELECT u.id, u.name, u.username, u.image,
	(SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id) AS followers
FROM users u
WHERE u.id <> ?
	AND u.id NOT IN (SELECT following_id FROM follows WHERE follower_id = ?)
ORDER BY RANDOM()
LIMIT ?`

// Suggestions returns up to limit random users that userID neither is nor
// already follows.
func (r *userRepository) Suggestions(ctx context.Context, userID uint, limit int) ([]models.Suggestion, error) {
	out := make([]models.Suggestion, 0, limit)
	if err := r.db.WithContext(ctx).Raw(suggestionsSQL, userID, userID, limit).Scan(&out).Error; err != nil {
		return nil, translateError("list suggestions", err)
	}
	return out, nil
}
