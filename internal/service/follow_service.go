package service

import (
	"context"

	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// FollowService maintains the directed follow graph.
type FollowService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	tx         repository.TxRunner
}

// NewFollowService returns a new FollowService.
func NewFollowService(userRepo repository.UserRepository, followRepo repository.FollowRepository, tx repository.TxRunner) *FollowService {
	return &FollowService{
		userRepo:   userRepo,
		followRepo: followRepo,
		tx:         tx,
	}
}

func checkEdge(followerID, followingID uint) error {
	if err := (validation.Fields{
		validation.ID("followerId", followerID),
		validation.ID("followingId", followingID),
	}).Check(); err != nil {
		return err
	}
	if followerID == followingID {
		return models.NewValidationError("Cannot follow yourself")
	}
	return nil
}

// Follow adds the edge followerID -> followingID and notifies the target.
// An existing edge is reported as a conflict by the store.
func (s *FollowService) Follow(ctx context.Context, followerID, followingID uint) error {
	return observe(ctx, "follow", func(ctx context.Context) error {
		if err := checkEdge(followerID, followingID); err != nil {
			return err
		}
		if _, err := s.userRepo.GetByID(ctx, followingID); err != nil {
			return err
		}

		var emitted *models.Notification
		err := s.tx.InTx(ctx, func(tx repository.Repositories) error {
			if err := tx.Follows.Create(ctx, followerID, followingID); err != nil {
				if models.IsCode(err, models.CodeConflict) {
					return models.NewConflictError("Already following this user", err)
				}
				return err
			}
			n, err := emit(ctx, tx.Notifications, notice{
				Type:      models.NotificationFollow,
				Recipient: followingID,
				Creator:   followerID,
			})
			emitted = n
			return err
		})
		if err != nil {
			return err
		}
		recordEmitted(emitted)
		return nil
	}, attribute.Int64("follower.id", int64(followerID)), attribute.Int64("following.id", int64(followingID)))
}

// Unfollow removes the edge. It is NotFound when the edge does not exist.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID uint) error {
	return observe(ctx, "unfollow", func(ctx context.Context) error {
		if err := checkEdge(followerID, followingID); err != nil {
			return err
		}
		removed, err := s.followRepo.Delete(ctx, followerID, followingID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return models.NewNotFoundMessage("Not following this user")
		}
		return nil
	})
}

// IsFollowing reports whether viewerID follows targetID.
func (s *FollowService) IsFollowing(ctx context.Context, viewerID, targetID uint) (bool, error) {
	if err := (validation.Fields{
		validation.ID("viewerId", viewerID),
		validation.ID("targetId", targetID),
	}).Check(); err != nil {
		return false, err
	}
	return s.followRepo.Exists(ctx, viewerID, targetID)
}

// IsFollowingProfile answers IsFollowing for a signed-in visitor looking at a
// profile page.
func (s *FollowService) IsFollowingProfile(ctx context.Context, viewerExternalID, profileUsername string) (bool, error) {
	if err := (validation.Fields{
		validation.Text("viewerExternalId", viewerExternalID),
		validation.Text("username", profileUsername),
	}).Check(); err != nil {
		return false, err
	}
	viewer, err := s.userRepo.GetByExternalID(ctx, viewerExternalID)
	if err != nil {
		return false, err
	}
	target, err := s.userRepo.GetByUsername(ctx, profileUsername)
	if err != nil {
		return false, err
	}
	return s.IsFollowing(ctx, viewer.ID, target.ID)
}
