package service

import (
	"context"
	"fmt"
	"log/slog"

	"strive/internal/middleware"
	"strive/internal/models"
	"strive/internal/repository"

	"gorm.io/gorm"
)

// IntervalService handles milestone-interval change requests. The requests
// share the proof approval lifecycle; on approval the new interval is
// written with a compare-and-set against the interval recorded at request
// time.
type IntervalService struct {
	changeRepo repository.ChangeRequestRepository
	goalRepo   repository.GoalRepository
	userRepo   repository.UserRepository
	scope      *ScopeService
	engine     *ApprovalEngine
	emitter    NotificationEmitter
}

// NewIntervalService returns a new IntervalService.
func NewIntervalService(
	changeRepo repository.ChangeRequestRepository,
	goalRepo repository.GoalRepository,
	userRepo repository.UserRepository,
	scope *ScopeService,
	engine *ApprovalEngine,
	emitter NotificationEmitter,
) *IntervalService {
	if emitter == nil {
		emitter = NoopEmitter()
	}
	return &IntervalService{
		changeRepo: changeRepo,
		goalRepo:   goalRepo,
		userRepo:   userRepo,
		scope:      scope,
		engine:     engine,
		emitter:    emitter,
	}
}

// RequestChange opens an interval change request for partner approval.
// Only one pending request may exist per goal.
func (s *IntervalService) RequestChange(ctx context.Context, requesterID, goalID uint, requestedInterval int) (*models.IntervalChangeRequest, error) {
	if requestedInterval <= 0 {
		return nil, models.NewValidationError("Requested interval must be positive")
	}

	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.OwnerID != requesterID {
		return nil, models.NewForbiddenError("Only the goal owner can request an interval change")
	}
	if goal.Status != models.GoalStatusActive {
		return nil, models.NewInvalidStateError("Goal is not active")
	}
	if goal.Privacy == models.GoalPrivacyPrivate {
		return nil, models.NewInvalidStateError("Private goals have no verifiers to approve interval changes")
	}
	if requestedInterval == goal.MilestoneIntervalDays {
		return nil, models.NewValidationError("Requested interval equals the current interval")
	}

	pending, err := s.changeRepo.GetPendingByGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, models.NewConflictError("An interval change request is already pending for this goal")
	}

	voters, err := s.scope.EligibleVoters(ctx, goal)
	if err != nil {
		return nil, err
	}
	if len(voters) == 0 {
		return nil, models.NewNoEligibleVotersError("No friends are currently able to verify this goal")
	}

	req := &models.IntervalChangeRequest{
		GoalID:                goalID,
		RequesterID:           requesterID,
		CurrentInterval:       goal.MilestoneIntervalDays,
		RequestedInterval:     requestedInterval,
		Status:                models.ApprovalStatusPending,
		RequiredVerifications: len(voters),
	}
	if err := s.changeRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "interval change created but requester lookup failed, skipping notifications",
			slog.Uint64("request_id", uint64(req.ID)), slog.String("error", err.Error()))
	} else {
		for _, voterID := range voters {
			s.emitter.Emit(ctx, &models.Notification{
				RecipientID: voterID,
				ActorID:     &requesterID,
				Kind:        models.NotificationIntervalChangeRequested,
				GoalID:      &goalID,
				Message: fmt.Sprintf("%s wants to change the milestone interval of %q from %d to %d days",
					requester.Username, goal.Title, req.CurrentInterval, req.RequestedInterval),
			})
		}
	}

	return s.changeRepo.GetByID(ctx, req.ID)
}

// GetRequest returns a change request if the viewer may see its goal.
func (s *IntervalService) GetRequest(ctx context.Context, viewerID, requestID uint) (*models.IntervalChangeRequest, error) {
	req, err := s.changeRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	goal, err := s.goalRepo.GetByID(ctx, req.GoalID)
	if err != nil {
		return nil, err
	}
	visible, err := s.scope.CanView(ctx, goal, viewerID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewNotFoundError("Interval change request", requestID)
	}
	return req, nil
}

// ListRequests returns the goal's change requests if the viewer may see it.
func (s *IntervalService) ListRequests(ctx context.Context, viewerID, goalID uint) ([]models.IntervalChangeRequest, error) {
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
	return s.changeRepo.ListByGoal(ctx, goalID)
}

// CastVote records one verification vote on an interval change request. On
// approval, the goal's interval is updated only if it still matches the
// value snapshotted at request time.
func (s *IntervalService) CastVote(ctx context.Context, voterID, requestID uint, approve bool, comment string) (*VoteResult, error) {
	req, err := s.changeRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.CastVote(ctx, KindIntervalChange, requestID, voterID, approve, comment,
		func(tx *gorm.DB, status models.ApprovalStatus) error {
			if status != models.ApprovalStatusApproved {
				return nil
			}
			res := tx.Model(&models.Goal{}).
				Where("id = ? AND milestone_interval_days = ?", req.GoalID, req.CurrentInterval).
				Update("milestone_interval_days", req.RequestedInterval)
			if res.Error != nil {
				return models.NewInternalError(res.Error)
			}
			if res.RowsAffected == 0 {
				// The interval moved since the request was filed. The
				// request still resolves; the stale write is skipped.
				middleware.Logger.WarnContext(ctx, "interval change approved but goal interval moved, skipping write",
					slog.Uint64("goal_id", uint64(req.GoalID)),
					slog.Int("expected_interval", req.CurrentInterval))
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	if result.Resolved() {
		s.emitter.Emit(ctx, &models.Notification{
			RecipientID: req.RequesterID,
			ActorID:     &voterID,
			Kind:        models.NotificationIntervalChangeResolved,
			GoalID:      &req.GoalID,
			Message:     fmt.Sprintf("Your interval change request was %s", result.Status),
		})
	}

	return result, nil
}
