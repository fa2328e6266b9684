package server

import (
	"strive/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(user)
}

// SearchUsers handles GET /api/users/search?q=
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q")
	if len(query) < 2 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query must be at least 2 characters"))
	}
	users, err := s.userRepo.Search(c.Context(), query, c.QueryInt("limit", 20))
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetUserGoals handles GET /api/users/:id/goals, returning only the goals
// the caller is allowed to see.
func (s *Server) GetUserGoals(c *fiber.Ctx) error {
	ownerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	goals, err := s.goalService.ListVisibleGoals(c.Context(), currentUserID(c), ownerID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"goals": goals})
}
