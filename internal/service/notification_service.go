package service

import (
	"context"

	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"
)

// NotificationService reads and acknowledges notifications. Writes happen
// through emit inside the transaction of the action being reported.
type NotificationService struct {
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
}

// MarkReadInput selects notifications to flag as read. A zero RecipientID
// skips the ownership filter.
type MarkReadInput struct {
	RecipientID uint
	IDs         []uint
}

func NewNotificationService(userRepo repository.UserRepository, notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
	}
}

// ListForUser returns userID's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint) ([]models.NotificationView, error) {
	if err := (validation.Fields{validation.ID("userId", userID)}).Check(); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	items, err := s.notificationRepo.ListForRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]models.NotificationView, 0, len(items))
	for _, n := range items {
		views = append(views, models.NewNotificationView(n))
	}
	return views, nil
}

// MarkRead flags the given notifications as read and returns how many
// changed. Unknown ids are skipped.
func (s *NotificationService) MarkRead(ctx context.Context, in MarkReadInput) (int64, error) {
	var updated int64
	err := observe(ctx, "mark_notifications_read", func(ctx context.Context) error {
		if len(in.IDs) == 0 {
			return nil
		}
		n, err := s.notificationRepo.MarkRead(ctx, in.RecipientID, in.IDs)
		if err != nil {
			return err
		}
		updated = n
		return nil
	})
	return updated, err
}
