package service

import (
	"context"

	"pulse/internal/cache"
	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// LikeService toggles likes on posts.
type LikeService struct {
	postRepo repository.PostRepository
	likeRepo repository.LikeRepository
	tx       repository.TxRunner
}

func NewLikeService(postRepo repository.PostRepository, likeRepo repository.LikeRepository, tx repository.TxRunner) *LikeService {
	return &LikeService{
		postRepo: postRepo,
		likeRepo: likeRepo,
		tx:       tx,
	}
}

// ToggleLike flips userID's like on postID. Liking someone else's post
// notifies its author; unliking leaves earlier notifications in place.
// When a concurrent toggle changes the pair between the read and the write,
// the loser gets a conflict and nothing is written.
func (s *LikeService) ToggleLike(ctx context.Context, userID, postID uint) (models.LikeOutcome, error) {
	var outcome models.LikeOutcome
	err := observe(ctx, "toggle_like", func(ctx context.Context) error {
		if err := (validation.Fields{
			validation.ID("userId", userID),
			validation.ID("postId", postID),
		}).Check(); err != nil {
			return err
		}

		post, err := s.postRepo.GetByID(ctx, postID)
		if err != nil {
			return err
		}

		liked, err := s.likeRepo.Exists(ctx, userID, postID)
		if err != nil {
			return err
		}

		if liked {
			removed, err := s.likeRepo.Delete(ctx, userID, postID)
			if err != nil {
				return err
			}
			if removed == 0 {
				return models.NewConflictError("Like was already removed", nil)
			}
			cache.InvalidateFeeds(ctx, post.AuthorID)
			outcome = models.LikeRemoved
			return nil
		}

		var emitted *models.Notification
		err = s.tx.InTx(ctx, func(tx repository.Repositories) error {
			if err := tx.Likes.Create(ctx, userID, postID); err != nil {
				if models.IsCode(err, models.CodeConflict) {
					return models.NewConflictError("Post is already liked", err)
				}
				return err
			}
			n, err := emit(ctx, tx.Notifications, notice{
				Type:      models.NotificationLike,
				Recipient: post.AuthorID,
				Creator:   userID,
				PostID:    &post.ID,
			})
			emitted = n
			return err
		})
		if err != nil {
			return err
		}
		recordEmitted(emitted)
		cache.InvalidateFeeds(ctx, post.AuthorID)
		outcome = models.LikeCreated
		return nil
	}, attribute.Int64("user.id", int64(userID)), attribute.Int64("post.id", int64(postID)))
	return outcome, err
}
