package service

import (
	"context"

	"pulse/internal/cache"
	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxBioLen         = 500
	maxNameLen        = 100
	maxSuggestedUsers = 50
)

// IdentityService maps identity-provider subjects to internal users and
// manages their profiles.
type IdentityService struct {
	userRepo repository.UserRepository
}

// UpsertUserInput is the identity payload received after sign-in.
type UpsertUserInput struct {
	ExternalID string
	Email      string
	Name       string
	Username   string
	Image      string
}

// UpdateProfileInput carries the user-editable profile fields.
type UpdateProfileInput struct {
	UserID   uint
	Name     string
	Bio      string
	Location string
	Website  string
}

func NewIdentityService(userRepo repository.UserRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo}
}

// Resolve returns the internal id of the user owning externalID.
func (s *IdentityService) Resolve(ctx context.Context, externalID string) (uint, error) {
	if err := (validation.Fields{validation.Text("externalId", externalID)}).Check(); err != nil {
		return 0, err
	}
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Upsert creates the user on first sight and refreshes identity fields on
// later calls. Two concurrent first calls for one subject yield one row.
func (s *IdentityService) Upsert(ctx context.Context, in UpsertUserInput) (*models.Profile, error) {
	var profile *models.Profile
	err := observe(ctx, "upsert_user", func(ctx context.Context) error {
		if err := (validation.Fields{
			validation.Text("externalId", in.ExternalID),
			validation.Text("username", in.Username),
		}).Check(); err != nil {
			return err
		}
		if err := validation.ValidateUsername(in.Username); err != nil {
			return models.NewValidationError(err.Error())
		}

		user := &models.User{
			ExternalID: in.ExternalID,
			Email:      in.Email,
			Name:       in.Name,
			Username:   in.Username,
			Image:      in.Image,
		}
		if err := s.userRepo.Upsert(ctx, user); err != nil {
			if models.IsCode(err, models.CodeConflict) {
				return models.NewConflictError("Username is already taken", err)
			}
			return err
		}
		cache.InvalidateFeeds(ctx, user.ID)

		counts, err := s.userRepo.Counts(ctx, user.ID)
		if err != nil {
			return err
		}
		profile = &models.Profile{User: *user, Counts: counts}
		return nil
	}, attribute.String("user.external_id", in.ExternalID))
	return profile, err
}

// UpdateProfile overwrites the editable profile fields of one user.
func (s *IdentityService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	var user *models.User
	err := observe(ctx, "update_profile", func(ctx context.Context) error {
		if err := (validation.Fields{
			validation.ID("userId", in.UserID),
			validation.Text("name", in.Name),
		}).Check(); err != nil {
			return err
		}
		if len(in.Name) > maxNameLen {
			return models.NewValidationError("Name too long (max 100 characters)")
		}
		if len(in.Bio) > maxBioLen {
			return models.NewValidationError("Bio too long (max 500 characters)")
		}

		updated, err := s.userRepo.UpdateProfile(ctx, in.UserID, repository.ProfileUpdate{
			Name:     in.Name,
			Bio:      in.Bio,
			Location: in.Location,
			Website:  in.Website,
		})
		if err != nil {
			return err
		}
		cache.InvalidateFeeds(ctx, updated.ID)
		user = updated
		return nil
	})
	return user, err
}

// GetProfile returns the user with the given username and its counters.
func (s *IdentityService) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	if err := (validation.Fields{validation.Text("username", username)}).Check(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	counts, err := s.userRepo.Counts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.Profile{User: *user, Counts: counts}, nil
}

// Suggestions returns up to count random users the caller does not follow yet.
func (s *IdentityService) Suggestions(ctx context.Context, userID uint, count int) ([]models.Suggestion, error) {
	if err := (validation.Fields{validation.ID("userId", userID)}).Check(); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, models.NewValidationError("count must be at least 1")
	}
	if count > maxSuggestedUsers {
		count = maxSuggestedUsers
	}
	return s.userRepo.Suggestions(ctx, userID, count)
}
