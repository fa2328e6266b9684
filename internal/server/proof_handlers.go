package server

import (
	"strive/internal/models"
	"strive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateProofUploadURL handles POST /api/goals/:id/proofs/upload-url.
// It issues a presigned PUT URL; the client uploads the evidence directly
// to object storage and then submits the proof with the returned key.
func (s *Server) CreateProofUploadURL(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
	}
	if err := c.BodyParser(&req); err != nil || req.Filename == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A filename is required"))
	}
	if req.ContentType == "" {
		req.ContentType = "application/octet-stream"
	}

	goal, err := s.goalService.GetGoal(c.Context(), currentUserID(c), goalID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	if goal.OwnerID != currentUserID(c) {
		return models.RespondAppError(c,
			models.NewForbiddenError("Only the goal owner can upload evidence"))
	}

	key := s.store.NewObjectKey(goalID, req.Filename)
	url, err := s.store.PresignUpload(c.Context(), key, req.ContentType)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"storage_key": key,
		"upload_url":  url,
	})
}

// CreateProof handles POST /api/goals/:id/proofs
func (s *Server) CreateProof(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var input service.CreateProofInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	input.GoalID = goalID

	proof, err := s.proofService.CreateProof(c.Context(), currentUserID(c), input)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(proof)
}

// GetGoalProofs handles GET /api/goals/:id/proofs
func (s *Server) GetGoalProofs(c *fiber.Ctx) error {
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	proofs, err := s.proofService.ListProofs(c.Context(), currentUserID(c), goalID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(fiber.Map{"proofs": proofs})
}

// GetProof handles GET /api/proofs/:id
func (s *Server) GetProof(c *fiber.Ctx) error {
	proofID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	proof, err := s.proofService.GetProof(c.Context(), currentUserID(c), proofID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(proof)
}

// GetProofEvidenceURL handles GET /api/proofs/:id/evidence-url, returning a
// presigned download URL for viewers in the proof's scope.
func (s *Server) GetProofEvidenceURL(c *fiber.Ctx) error {
	proofID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	proof, err := s.proofService.GetProof(c.Context(), currentUserID(c), proofID)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	url, err := s.store.PresignDownload(c.Context(), proof.StorageKey)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"evidence_url": url})
}

// CastProofVote handles POST /api/proofs/:id/votes
func (s *Server) CastProofVote(c *fiber.Ctx) error {
	proofID, err := s.parseID(c, "id")
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

	result, err := s.proofService.CastVote(c.Context(), currentUserID(c), proofID, *req.Approve, req.Comment)
	if err != nil {
		return models.RespondAppError(c, err)
	}
	return c.JSON(result)
}
