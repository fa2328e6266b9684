package server

import (
	"strive/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RequestIntervalChange handles POST /api/goals/:id/interval-changes
func (s *Server) RequestIntervalChange(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		RequestedInterval int `json:"requested_interval_days"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	change, err := s.intervalService.RequestChange(c.Context(), currentUserID(c), goalID, req.RequestedInterval)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(change)
}

// GetIntervalChanges handles GET /api/goals/:id/interval-changes
func (s *Server) GetIntervalChanges(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	changes, err := s.intervalService.ListRequests(c.Context(), currentUserID(c), goalID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"interval_changes": changes})
}

// GetIntervalChange handles GET /api/interval-changes/:id
func (s *Server) GetIntervalChange(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	change, err := s.intervalService.GetRequest(c.Context(), currentUserID(c), requestID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(change)
}

// CastIntervalVote handles POST /api/interval-changes/:id/votes
func (s *Server) CastIntervalVote(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Approve *bool  `json:"approve"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil || req.Approve == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("An approve boolean is required"))
	}

	result, err := s.intervalService.CastVote(c.Context(), currentUserID(c), requestID, *req.Approve, req.Comment)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(result)
}
