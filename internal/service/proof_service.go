package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"strive/internal/middleware"
	"strive/internal/models"
	"strive/internal/repository"

	"gorm.io/gorm"
)

// ProofService handles evidence submission and verification voting.
type ProofService struct {
	proofRepo     repository.ProofRepository
	goalRepo      repository.GoalRepository
	milestoneRepo repository.MilestoneRepository
	userRepo      repository.UserRepository
	scope         *ScopeService
	engine        *ApprovalEngine
	emitter       NotificationEmitter
}

// NewProofService returns a new ProofService.
func NewProofService(
	proofRepo repository.ProofRepository,
	goalRepo repository.GoalRepository,
	milestoneRepo repository.MilestoneRepository,
	userRepo repository.UserRepository,
	scope *ScopeService,
	engine *ApprovalEngine,
	emitter NotificationEmitter,
) *ProofService {
	if emitter == nil {
		emitter = NoopEmitter()
	}
	return &ProofService{
		proofRepo:     proofRepo,
		goalRepo:      goalRepo,
		milestoneRepo: milestoneRepo,
		userRepo:      userRepo,
		scope:         scope,
		engine:        engine,
		emitter:       emitter,
	}
}

// CreateProofInput carries the fields needed to submit a proof.
type CreateProofInput struct {
	GoalID      uint   `json:"goal_id"`
	MilestoneID *uint  `json:"milestone_id"`
	StorageKey  string `json:"storage_key"`
	Caption     string `json:"caption"`
}

// CreateProof submits evidence for a goal. The required verification count
// is frozen from the eligible-voter set at this moment; later friend-graph
// changes do not move the bar for this proof.
func (s *ProofService) CreateProof(ctx context.Context, ownerID uint, input CreateProofInput) (*models.Proof, error) {
	if input.StorageKey == "" {
		return nil, models.NewValidationError("Storage key is required")
	}

	goal, err := s.goalRepo.GetByID(ctx, input.GoalID)
	if err != nil {
		return nil, err
	}
	if goal.OwnerID != ownerID {
		return nil, models.NewForbiddenError("Only the goal owner can submit proofs")
	}
	if goal.Status != models.GoalStatusActive {
		return nil, models.NewInvalidStateError("Goal is not active")
	}
	if goal.Privacy == models.GoalPrivacyPrivate {
		return nil, models.NewInvalidStateError("Private goals have no verifiers to submit proofs to")
	}

	if input.MilestoneID != nil {
		milestone, err := s.milestoneRepo.GetByID(ctx, *input.MilestoneID)
		if err != nil {
			return nil, err
		}
		if milestone.GoalID != goal.ID {
			return nil, models.NewValidationError("Milestone does not belong to this goal")
		}
		if !milestone.Open() {
			return nil, models.NewInvalidStateError("Milestone is already resolved")
		}
	}

	voters, err := s.scope.EligibleVoters(ctx, goal)
	if err != nil {
		return nil, err
	}
	if len(voters) == 0 {
		return nil, models.NewNoEligibleVotersError("No friends are currently able to verify this goal")
	}

	proof := &models.Proof{
		GoalID:                goal.ID,
		MilestoneID:           input.MilestoneID,
		OwnerID:               ownerID,
		StorageKey:            input.StorageKey,
		Caption:               input.Caption,
		Status:                models.ApprovalStatusPending,
		RequiredVerifications: len(voters),
	}
	if err := s.proofRepo.Create(ctx, proof); err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "proof created but owner lookup failed, skipping notifications",
			slog.Uint64("proof_id", uint64(proof.ID)), slog.String("error", err.Error()))
	} else {
		for _, voterID := range voters {
			s.emitter.Emit(ctx, &models.Notification{
				RecipientID: voterID,
				ActorID:     &ownerID,
				Kind:        models.NotificationProofSubmitted,
				GoalID:      &goal.ID,
				ProofID:     &proof.ID,
				Message:     fmt.Sprintf("%s submitted proof for %q", owner.Username, goal.Title),
			})
		}
	}

	return s.proofRepo.GetByID(ctx, proof.ID)
}

// GetProof returns the proof if the viewer may see its goal.
func (s *ProofService) GetProof(ctx context.Context, viewerID, proofID uint) (*models.Proof, error) {
	proof, err := s.proofRepo.GetByID(ctx, proofID)
	if err != nil {
		return nil, err
	}
	goal, err := s.goalRepo.GetByID(ctx, proof.GoalID)
	if err != nil {
		return nil, err
	}
	visible, err := s.scope.CanView(ctx, goal, viewerID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewNotFoundError("Proof", proofID)
	}
	return proof, nil
}

// ListProofs returns the goal's proofs if the viewer may see the goal.
func (s *ProofService) ListProofs(ctx context.Context, viewerID, goalID uint) ([]models.Proof, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	visible, err := s.scope.CanView(ctx, goal, viewerID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewNotFoundError("Goal", goalID)
	}
	return s.proofRepo.ListByGoal(ctx, goalID)
}

// CastVote records one verification vote on a proof. On approval of a
// milestone-bound proof, the milestone completes in the same transaction,
// and the goal completes when its last milestone does.
func (s *ProofService) CastVote(ctx context.Context, voterID, proofID uint, approve bool, comment string) (*VoteResult, error) {
	proof, err := s.proofRepo.GetByID(ctx, proofID)
	if err != nil {
		return nil, err
	}

	var milestoneCompleted, goalCompleted bool

	result, err := s.engine.CastVote(ctx, KindProof, proofID, voterID, approve, comment,
		func(tx *gorm.DB, status models.ApprovalStatus) error {
			if status != models.ApprovalStatusApproved || proof.MilestoneID == nil {
				return nil
			}
			res := tx.Model(&models.Milestone{}).
				Where("id = ? AND completed = ? AND failed = ?", *proof.MilestoneID, false, false).
				Updates(map[string]interface{}{
					"completed":    true,
					"completed_at": time.Now(),
				})
			if res.Error != nil {
				return models.NewInternalError(res.Error)
			}
			if res.RowsAffected == 0 {
				// Already resolved elsewhere; nothing to cascade.
				return nil
			}
			milestoneCompleted = true

			var open int64
			if err := tx.Model(&models.Milestone{}).
				Where("goal_id = ? AND completed = ? AND failed = ?", proof.GoalID, false, false).
				Count(&open).Error; err != nil {
				return models.NewInternalError(err)
			}
			if open == 0 {
				res := tx.Model(&models.Goal{}).
					Where("id = ? AND status = ?", proof.GoalID, models.GoalStatusActive).
					Update("status", models.GoalStatusCompleted)
				if res.Error != nil {
					return models.NewInternalError(res.Error)
				}
				goalCompleted = res.RowsAffected > 0
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	if result.Resolved() {
		s.emitter.Emit(ctx, &models.Notification{
			RecipientID: proof.OwnerID,
			ActorID:     &voterID,
			Kind:        models.NotificationProofResolved,
			GoalID:      &proof.GoalID,
			ProofID:     &proof.ID,
			Message:     fmt.Sprintf("Your proof was %s", result.Status),
		})
	}
	if milestoneCompleted {
		msg := "You completed a milestone"
		if goalCompleted {
			msg = "You completed the final milestone; goal achieved"
		}
		s.emitter.Emit(ctx, &models.Notification{
			RecipientID: proof.OwnerID,
			Kind:        models.NotificationMilestoneCompleted,
			GoalID:      &proof.GoalID,
			ProofID:     &proof.ID,
			Message:     msg,
		})
	}

	return result, nil
}
