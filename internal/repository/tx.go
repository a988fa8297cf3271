package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository bound to the same connection or
// transaction.
type Repositories struct {
	Users         UserRepository
	Posts         PostRepository
	Comments      CommentRepository
	Likes         LikeRepository
	Follows       FollowRepository
	Notifications NotificationRepository
}

// NewRepositories binds all repositories to db.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         NewUserRepository(db),
		Posts:         NewPostRepository(db),
		Comments:      NewCommentRepository(db),
		Likes:         NewLikeRepository(db),
		Follows:       NewFollowRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// TxRunner runs fn inside a single store transaction. Returning an error from
// fn rolls back every write fn made.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx Repositories) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewTxRunner returns a TxRunner backed by gorm transactions on db.
func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(tx Repositories) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
	return translateError("transaction", err)
}
