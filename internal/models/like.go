package models

import "time"

// Like represents a user's like on a post.
// (UserID, PostID) is the primary key, so a pair can exist at most once.
type Like struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// LikeOutcome reports what a toggle did.
type LikeOutcome string

const (
	LikeCreated LikeOutcome = "created"
	LikeRemoved LikeOutcome = "removed"
)
