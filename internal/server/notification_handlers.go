package server

import (
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.NotificationView
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	items, err := s.engine.Notifications.ListForUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(items)
}

// MarkNotificationsRead handles POST /api/notifications/read. Callers can
// only mark their own notifications.
// @Summary Mark notifications read
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{ids=[]int} true "Notification IDs"
// @Success 200 {object} object{updated=int}
// @Failure 400 {object} models.ErrorResponse
// @Router /notifications/read [post]
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	updated, err := s.engine.Notifications.MarkRead(c.UserContext(), service.MarkReadInput{
		RecipientID: currentUserID(c),
		IDs:         req.IDs,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}
