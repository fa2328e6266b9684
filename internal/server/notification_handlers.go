package server

import (
	"strive/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	unreadOnly := c.QueryBool("unread", false)
	limit := c.QueryInt("limit", 50)

	notifs, err := s.notificationRepo.ListByRecipient(c.Context(), currentUserID(c), unreadOnly, limit)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"notifications": notifs})
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.notificationRepo.CountUnread(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notificationRepo.MarkRead(c.Context(), currentUserID(c), id); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	if err := s.notificationRepo.MarkAllRead(c.Context(), currentUserID(c)); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
