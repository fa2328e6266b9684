package server

import (
	"strive/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFriends handles GET /api/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	friends, err := s.friendService.GetFriends(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"friends": friends})
}

// SendFriendRequest handles POST /api/friends/requests/:userId
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	friendship, err := s.friendService.SendFriendRequest(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(friendship)
}

// GetPendingRequests handles GET /api/friends/requests
func (s *Server) GetPendingRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.GetPendingRequests(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// GetSentRequests handles GET /api/friends/requests/sent
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.GetSentRequests(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// AcceptFriendRequest handles POST /api/friends/requests/:requestId/accept
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}
	friendship, err := s.friendService.AcceptFriendRequest(c.Context(), currentUserID(c), requestID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(friendship)
}

// RejectFriendRequest handles POST /api/friends/requests/:requestId/reject
func (s *Server) RejectFriendRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}
	friendship, err := s.friendService.RejectFriendRequest(c.Context(), currentUserID(c), requestID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(friendship)
}

// CancelFriendRequest handles DELETE /api/friends/requests/:requestId
func (s *Server) CancelFriendRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}
	if err := s.friendService.CancelFriendRequest(c.Context(), currentUserID(c), requestID); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetRelationshipStatus handles GET /api/friends/status/:userId
func (s *Server) GetRelationshipStatus(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	status, err := s.friendService.GetRelationshipStatus(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"status": status})
}

// RemoveFriend handles DELETE /api/friends/:userId
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	friendID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.friendService.RemoveFriend(c.Context(), currentUserID(c), friendID); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
