package service

import (
	"context"
	"time"

	"pulse/internal/cache"
	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const maxContentLen = 50000

// PostService owns the post lifecycle and the feed projections.
type PostService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	tx       repository.TxRunner
	feedTTL  time.Duration
}

type CreatePostInput struct {
	AuthorID uint
	Content  string
	Image    string
}

type DeletePostInput struct {
	PostID      uint
	RequesterID uint
}

func NewPostService(userRepo repository.UserRepository, postRepo repository.PostRepository, tx repository.TxRunner, feedTTL time.Duration) *PostService {
	return &PostService{
		userRepo: userRepo,
		postRepo: postRepo,
		tx:       tx,
		feedTTL:  feedTTL,
	}
}

// CreatePost stores a post with text, an image URL, or both.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostView, error) {
	var view *models.PostView
	err := observe(ctx, "create_post", func(ctx context.Context) error {
		if err := (validation.Fields{
			validation.ID("authorId", in.AuthorID),
			validation.AnyText("content or image", in.Content, in.Image),
		}).Check(); err != nil {
			return err
		}
		if len(in.Content) > maxContentLen {
			return models.NewValidationError("Content too long (max 50000 characters)")
		}

		author, err := s.userRepo.GetByID(ctx, in.AuthorID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return models.NewValidationError("Author does not exist")
			}
			return err
		}

		post := &models.Post{AuthorID: author.ID, Content: in.Content, Image: in.Image}
		if err := s.postRepo.Create(ctx, post); err != nil {
			return err
		}
		cache.InvalidateFeeds(ctx, author.ID)

		post.Author = *author
		v := models.NewPostView(*post)
		view = &v
		return nil
	}, attribute.Int64("author.id", int64(in.AuthorID)))
	return view, err
}

// DeletePost removes a post together with its notifications, likes and
// comments. Only the author may delete it.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	return observe(ctx, "delete_post", func(ctx context.Context) error {
		if err := (validation.Fields{
			validation.ID("postId", in.PostID),
			validation.ID("userId", in.RequesterID),
		}).Check(); err != nil {
			return err
		}

		post, err := s.postRepo.GetByID(ctx, in.PostID)
		if err != nil {
			return err
		}
		if post.AuthorID != in.RequesterID {
			return models.NewForbiddenError("Only the author can delete this post")
		}

		err = s.tx.InTx(ctx, func(tx repository.Repositories) error {
			// Notifications go first: they reference the comments.
			if _, err := tx.Notifications.DeleteForPost(ctx, post.ID); err != nil {
				return err
			}
			if _, err := tx.Likes.DeleteByPost(ctx, post.ID); err != nil {
				return err
			}
			if _, err := tx.Comments.DeleteByPost(ctx, post.ID); err != nil {
				return err
			}
			return tx.Posts.Delete(ctx, post.ID)
		})
		if err != nil {
			return err
		}
		cache.InvalidateFeeds(ctx, post.AuthorID)
		return nil
	}, attribute.Int64("post.id", int64(in.PostID)))
}

// ListPosts returns the whole feed, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]models.PostView, error) {
	var views []models.PostView
	err := cache.Aside(ctx, cache.FamilyFeed, cache.FeedKey(), &views, s.feedTTL, func() error {
		posts, err := s.postRepo.ListFeed(ctx)
		if err != nil {
			return err
		}
		views = toPostViews(posts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// ListPostsByAuthor returns one user's posts, newest first.
func (s *PostService) ListPostsByAuthor(ctx context.Context, username string) ([]models.PostView, error) {
	if err := (validation.Fields{validation.Text("username", username)}).Check(); err != nil {
		return nil, err
	}
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var views []models.PostView
	err = cache.Aside(ctx, cache.FamilyAuthorFeed, cache.AuthorFeedKey(author.ID), &views, s.feedTTL, func() error {
		posts, err := s.postRepo.ListByAuthor(ctx, author.ID)
		if err != nil {
			return err
		}
		views = toPostViews(posts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func toPostViews(posts []models.Post) []models.PostView {
	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, models.NewPostView(p))
	}
	return views
}
