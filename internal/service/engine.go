// Package service implements the social interaction engine: identity
// resolution, the follow graph, posts, likes, comments and notifications.
// Every multi-row write runs inside one repository transaction.
package service

import (
	"context"
	"log/slog"
	"time"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Engine groups the services behind the HTTP surface.
type Engine struct {
	Identity      *IdentityService
	Follows       *FollowService
	Posts         *PostService
	Likes         *LikeService
	Comments      *CommentService
	Notifications *NotificationService
}

// NewEngine wires every service against db. feedTTL bounds how long a cached
// feed may be served.
func NewEngine(db *gorm.DB, feedTTL time.Duration) *Engine {
	repos := repository.NewRepositories(db)
	tx := repository.NewTxRunner(db)
	return &Engine{
		Identity:      NewIdentityService(repos.Users),
		Follows:       NewFollowService(repos.Users, repos.Follows, tx),
		Posts:         NewPostService(repos.Users, repos.Posts, tx, feedTTL),
		Likes:         NewLikeService(repos.Posts, repos.Likes, tx),
		Comments:      NewCommentService(repos.Posts, tx),
		Notifications: NewNotificationService(repos.Users, repos.Notifications),
	}
}

// observe runs one engine operation as an observability.Operation so its
// span, latency and outcome are recorded. Transient and internal failures
// are also logged.
func observe(ctx context.Context, name string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, op := observability.StartOperation(ctx, name, attrs...)

	err := fn(ctx)
	outcome := observability.OutcomeOK
	if err != nil {
		code := models.CodeOf(err)
		outcome = string(code)
		switch code {
		case models.CodeTransient:
			middleware.Logger.WarnContext(ctx, "Engine operation failed transiently",
				slog.String("operation", name),
				slog.String("error", err.Error()),
			)
		case models.CodeInternal:
			middleware.Logger.ErrorContext(ctx, "Engine operation failed",
				slog.String("operation", name),
				slog.String("error", err.Error()),
			)
		}
	}
	op.Finish(outcome, err)
	return err
}

// notice describes a notification to write alongside a state change.
type notice struct {
	Type      models.NotificationType
	Recipient uint
	Creator   uint
	PostID    *uint
	CommentID *uint
}

// emit writes n through the caller's transaction. It returns nil without
// writing when the recipient would be notified of their own action.
func emit(ctx context.Context, notifications repository.NotificationRepository, n notice) (*models.Notification, error) {
	if n.Recipient == n.Creator {
		return nil, nil
	}
	record := &models.Notification{
		Type:      n.Type,
		UserID:    n.Recipient,
		CreatorID: n.Creator,
		PostID:    n.PostID,
		CommentID: n.CommentID,
	}
	if err := notifications.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// recordEmitted counts n once its transaction has committed.
func recordEmitted(n *models.Notification) {
	if n != nil {
		observability.NotificationsEmitted.WithLabelValues(string(n.Type)).Inc()
	}
}
