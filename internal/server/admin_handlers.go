package server

import (
	"time"

	"strive/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RunSweep handles POST /api/admin/sweep, failing overdue milestones on
// demand. The same sweep normally runs from the dedicated sweep binary.
func (s *Server) RunSweep(c *fiber.Ctx) error {
	result, err := s.milestoneService.SweepOverdue(c.Context(), time.Now())
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(result)
}
