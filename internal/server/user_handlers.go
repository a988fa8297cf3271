package server

import (
	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultSuggestionCount = 3

// SyncUser handles POST /api/users/sync. The external id always comes from
// the verified token; body fields override the token's profile claims.
// @Summary Sync the caller
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{email=string,name=string,username=string,image=string} false "Profile overrides"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/sync [post]
func (s *Server) SyncUser(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Username string `json:"username"`
		Image    string `json:"image"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return s.respondError(c, models.NewValidationError("Invalid request body"))
		}
	}

	externalID, _ := c.Locals(middleware.ExternalIDLocal).(string)
	claims := currentClaims(c)
	profile, err := s.engine.Identity.Upsert(c.UserContext(), service.UpsertUserInput{
		ExternalID: externalID,
		Email:      firstNonEmpty(req.Email, claims.Email),
		Name:       firstNonEmpty(req.Name, claims.Name),
		Username:   firstNonEmpty(req.Username, claims.Username),
		Image:      firstNonEmpty(req.Image, claims.Picture),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,bio=string,location=string,website=string} true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Bio      string `json:"bio"`
		Location string `json:"location"`
		Website  string `json:"website"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.engine.Identity.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Name:     req.Name,
		Bio:      req.Bio,
		Location: req.Location,
		Website:  req.Website,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// GetSuggestions handles GET /api/users/suggestions?count=N
// @Summary Suggest users to follow
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param count query int false "Number of suggestions" default(3)
// @Success 200 {array} models.Suggestion
// @Failure 400 {object} models.ErrorResponse
// @Router /users/suggestions [get]
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	count := c.QueryInt("count", defaultSuggestionCount)
	suggestions, err := s.engine.Identity.Suggestions(c.UserContext(), currentUserID(c), count)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(suggestions)
}

// GetUserProfile handles GET /api/users/:username
// @Summary Get a profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.engine.Identity.GetProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// GetUserPosts handles GET /api/users/:username/posts
// @Summary List a user's posts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {array} models.PostView
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	posts, err := s.engine.Posts.ListPostsByAuthor(c.UserContext(), c.Params("username"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(posts)
}

// GetFollowStatus handles GET /api/users/:username/follow
// @Summary Check follow status
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} object{following=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/follow [get]
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	externalID, _ := c.Locals(middleware.ExternalIDLocal).(string)
	following, err := s.engine.Follows.IsFollowingProfile(c.UserContext(), externalID, c.Params("username"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// FollowUser handles POST /api/users/:id/follow
// @Summary Follow a user
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 201 {object} object{following=bool}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.engine.Follows.Follow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"following": true})
}

// UnfollowUser handles DELETE /api/users/:id/follow
// @Summary Unfollow a user
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{following=bool}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.engine.Follows.Unfollow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": false})
}
