package server

import (
	"strive/internal/models"
	"strive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateGoal handles POST /api/goals
func (s *Server) CreateGoal(c *fiber.Ctx) error {
	var input service.CreateGoalInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	goal, err := s.goalService.CreateGoal(c.Context(), currentUserID(c), input)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

// GetMyGoals handles GET /api/goals
func (s *Server) GetMyGoals(c *fiber.Ctx) error {
	goals, err := s.goalService.ListOwnGoals(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"goals": goals})
}

// GetGoal handles GET /api/goals/:id
func (s *Server) GetGoal(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	goal, err := s.goalService.GetGoal(c.Context(), currentUserID(c), goalID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(goal)
}

// UpdateGoal handles PUT /api/goals/:id
func (s *Server) UpdateGoal(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var input service.UpdateGoalInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	goal, err := s.goalService.UpdateGoal(c.Context(), currentUserID(c), goalID, input)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(goal)
}

// ArchiveGoal handles POST /api/goals/:id/archive
func (s *Server) ArchiveGoal(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.goalService.ArchiveGoal(c.Context(), currentUserID(c), goalID); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetGoalMilestones handles GET /api/goals/:id/milestones
func (s *Server) GetGoalMilestones(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	// Visibility check rides on GetGoal.
	if _, err := s.goalService.GetGoal(c.Context(), currentUserID(c), goalID); err != nil {
		return models.RespondAppError(c, err)
	}
	milestones, err := s.milestoneService.ListByGoal(c.Context(), goalID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"milestones": milestones})
}

// GetProofRequirements handles GET /api/goals/:id/proof-requirements
func (s *Server) GetProofRequirements(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	reqs, err := s.goalService.GetProofRequirements(c.Context(), currentUserID(c), goalID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(reqs)
}

// GetAllowedViewers handles GET /api/goals/:id/viewers
func (s *Server) GetAllowedViewers(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewers, err := s.goalService.ListAllowedViewers(c.Context(), currentUserID(c), goalID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"viewers": viewers})
}

// AddAllowedViewer handles POST /api/goals/:id/viewers
func (s *Server) AddAllowedViewer(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		UserID    uint  `json:"user_id"`
		CanVerify *bool `json:"can_verify"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A valid user_id is required"))
	}
	canVerify := true
	if req.CanVerify != nil {
		canVerify = *req.CanVerify
	}
	if err := s.goalService.AddAllowedViewer(c.Context(), currentUserID(c), goalID, req.UserID, canVerify); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// RemoveAllowedViewer handles DELETE /api/goals/:id/viewers/:userId
func (s *Server) RemoveAllowedViewer(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.goalService.RemoveAllowedViewer(c.Context(), currentUserID(c), goalID, userID); err != nil {
		return models.RespondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
