package service

import (
	"context"

	"pulse/internal/cache"
	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const maxCommentLen = 10000

type CommentService struct {
	postRepo repository.PostRepository
	tx       repository.TxRunner
}

type CreateCommentInput struct {
	PostID  uint
	UserID  uint
	Content string
}

func NewCommentService(postRepo repository.PostRepository, tx repository.TxRunner) *CommentService {
	return &CommentService{postRepo: postRepo, tx: tx}
}

// CreateComment adds a comment and, unless the commenter wrote the post,
// a COMMENT notification pointing at it. Both land or neither does.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	var comment *models.Comment
	err := observe(ctx, "create_comment", func(ctx context.Context) error {
		if err := (validation.Fields{
			validation.ID("postId", in.PostID),
			validation.ID("userId", in.UserID),
			validation.Text("content", in.Content),
		}).Check(); err != nil {
			return err
		}
		if len(in.Content) > maxCommentLen {
			return models.NewValidationError("Comment too long (max 10000 characters)")
		}

		post, err := s.postRepo.GetByID(ctx, in.PostID)
		if err != nil {
			return err
		}

		created := &models.Comment{PostID: post.ID, AuthorID: in.UserID, Content: in.Content}
		var emitted *models.Notification
		err = s.tx.InTx(ctx, func(tx repository.Repositories) error {
			if err := tx.Comments.Create(ctx, created); err != nil {
				return err
			}
			n, err := emit(ctx, tx.Notifications, notice{
				Type:      models.NotificationComment,
				Recipient: post.AuthorID,
				Creator:   in.UserID,
				PostID:    &post.ID,
				CommentID: &created.ID,
			})
			emitted = n
			return err
		})
		if err != nil {
			return err
		}
		recordEmitted(emitted)
		cache.InvalidateFeeds(ctx, post.AuthorID)
		comment = created
		return nil
	}, attribute.Int64("post.id", int64(in.PostID)))
	return comment, err
}
