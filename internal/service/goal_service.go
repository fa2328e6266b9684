package service

import (
	"context"
	"time"

	"strive/internal/models"
	"strive/internal/repository"
)

// GoalService provides goal lifecycle and viewer-list business logic.
type GoalService struct {
	goalRepo      repository.GoalRepository
	milestoneRepo repository.MilestoneRepository
	friendRepo    repository.FriendRepository
	userRepo      repository.UserRepository
	scope         *ScopeService
}

// NewGoalService returns a new GoalService.
func NewGoalService(
	goalRepo repository.GoalRepository,
	milestoneRepo repository.MilestoneRepository,
	friendRepo repository.FriendRepository,
	userRepo repository.UserRepository,
	scope *ScopeService,
) *GoalService {
	return &GoalService{
		goalRepo:      goalRepo,
		milestoneRepo: milestoneRepo,
		friendRepo:    friendRepo,
		userRepo:      userRepo,
		scope:         scope,
	}
}

// CreateGoalInput carries the fields needed to create a goal.
type CreateGoalInput struct {
	Title                 string             `json:"title"`
	Description           string             `json:"description"`
	Privacy               models.GoalPrivacy `json:"privacy"`
	MilestoneIntervalDays int                `json:"milestone_interval_days"`
	StartDate             time.Time          `json:"start_date"`
	Deadline              time.Time          `json:"deadline"`
}

func validPrivacy(p models.GoalPrivacy) bool {
	switch p {
	case models.GoalPrivacyPrivate, models.GoalPrivacyFriends, models.GoalPrivacySelectFriends:
		return true
	}
	return false
}

// CreateGoal creates a goal and generates its milestone schedule.
func (s *GoalService) CreateGoal(ctx context.Context, ownerID uint, input CreateGoalInput) (*models.Goal, error) {
	if input.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if !validPrivacy(input.Privacy) {
		return nil, models.NewValidationError("Invalid privacy setting")
	}
	if input.MilestoneIntervalDays < 0 {
		return nil, models.NewValidationError("Milestone interval must not be negative")
	}
	if input.StartDate.IsZero() {
		input.StartDate = time.Now()
	}
	if !input.Deadline.After(input.StartDate) {
		return nil, models.NewValidationError("Deadline must be after the start date")
	}

	goal := &models.Goal{
		OwnerID:               ownerID,
		Title:                 input.Title,
		Description:           input.Description,
		Privacy:               input.Privacy,
		MilestoneIntervalDays: input.MilestoneIntervalDays,
		StartDate:             input.StartDate,
		Deadline:              input.Deadline,
		Status:                models.GoalStatusActive,
	}
	if err := s.goalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}

	if err := s.milestoneRepo.CreateBatch(ctx, GenerateSchedule(goal)); err != nil {
		return nil, err
	}

	return s.goalRepo.GetByID(ctx, goal.ID)
}

// GetGoal returns the goal if the viewer is allowed to see it.
func (s *GoalService) GetGoal(ctx context.Context, viewerID, goalID uint) (*models.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	visible, err := s.scope.CanView(ctx, goal, viewerID)
	if err != nil {
		return nil, err
	}
	if !visible {
		// Hide the goal's existence from ineligible viewers.
		return nil, models.NewNotFoundError("Goal", goalID)
	}
	return goal, nil
}

// ListOwnGoals returns every goal the user owns.
func (s *GoalService) ListOwnGoals(ctx context.Context, ownerID uint) ([]models.Goal, error) {
	return s.goalRepo.ListByOwner(ctx, ownerID)
}

// ListVisibleGoals returns another user's goals that the viewer may see.
func (s *GoalService) ListVisibleGoals(ctx context.Context, viewerID, ownerID uint) ([]models.Goal, error) {
	goals, err := s.goalRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Goal, 0, len(goals))
	for i := range goals {
		ok, err := s.scope.CanView(ctx, &goals[i], viewerID)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, goals[i])
		}
	}
	return visible, nil
}

// UpdateGoalInput carries the owner-editable goal fields. Nil fields are
// left unchanged. Interval changes do not go through here; they require
// partner approval.
type UpdateGoalInput struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Privacy     *models.GoalPrivacy `json:"privacy"`
}

// UpdateGoal applies owner edits to title, description, and privacy.
func (s *GoalService) UpdateGoal(ctx context.Context, ownerID, goalID uint, input UpdateGoalInput) (*models.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.OwnerID != ownerID {
		return nil, models.NewForbiddenError("Only the goal owner can edit it")
	}
	if goal.Status != models.GoalStatusActive {
		return nil, models.NewInvalidStateError("Goal is not active")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, models.NewValidationError("Title is required")
		}
		goal.Title = *input.Title
	}
	if input.Description != nil {
		goal.Description = *input.Description
	}
	if input.Privacy != nil {
		if !validPrivacy(*input.Privacy) {
			return nil, models.NewValidationError("Invalid privacy setting")
		}
		goal.Privacy = *input.Privacy
	}

	if err := s.goalRepo.Update(ctx, goal); err != nil {
		return nil, err
	}
	return s.goalRepo.GetByID(ctx, goalID)
}

// ArchiveGoal hides a goal from active views without deleting its history.
func (s *GoalService) ArchiveGoal(ctx context.Context, ownerID, goalID uint) error {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return err
	}
	if goal.OwnerID != ownerID {
		return models.NewForbiddenError("Only the goal owner can archive it")
	}
	return s.goalRepo.UpdateStatus(ctx, goalID, models.GoalStatusArchived)
}

// AddAllowedViewer grants a friend access to a select_friends goal.
func (s *GoalService) AddAllowedViewer(ctx context.Context, ownerID, goalID, userID uint, canVerify bool) error {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return err
	}
	if goal.OwnerID != ownerID {
		return models.NewForbiddenError("Only the goal owner can manage viewers")
	}
	if goal.Privacy != models.GoalPrivacySelectFriends {
		return models.NewInvalidStateError("Goal does not use a viewer list")
	}
	if userID == ownerID {
		return models.NewValidationError("Cannot add yourself as a viewer")
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	edge, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, ownerID, userID)
	if err != nil {
		return err
	}
	if !edge.IsAccepted() {
		return models.NewValidationError("Viewers must be accepted friends")
	}

	existing, err := s.goalRepo.GetAllowedViewer(ctx, goalID, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.NewConflictError("User is already on the viewer list")
	}

	return s.goalRepo.AddAllowedViewer(ctx, &models.AllowedViewer{
		GoalID:    goalID,
		UserID:    userID,
		CanVerify: canVerify,
	})
}

// RemoveAllowedViewer revokes a viewer grant.
func (s *GoalService) RemoveAllowedViewer(ctx context.Context, ownerID, goalID, userID uint) error {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return err
	}
	if goal.OwnerID != ownerID {
		return models.NewForbiddenError("Only the goal owner can manage viewers")
	}
	existing, err := s.goalRepo.GetAllowedViewer(ctx, goalID, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return models.NewNotFoundError("Viewer", userID)
	}
	return s.goalRepo.RemoveAllowedViewer(ctx, goalID, userID)
}

// ListAllowedViewers returns the goal's viewer grants; owner only.
func (s *GoalService) ListAllowedViewers(ctx context.Context, ownerID, goalID uint) ([]models.AllowedViewer, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.OwnerID != ownerID {
		return nil, models.NewForbiddenError("Only the goal owner can list viewers")
	}
	return s.goalRepo.ListAllowedViewers(ctx, goalID)
}

// ProofRequirements describes what a proof submitted right now would need.
// The count reflects the live friend graph; existing pending proofs keep
// their frozen requirement.
type ProofRequirements struct {
	EligibleVoters        []uint `json:"eligible_voters"`
	RequiredVerifications int    `json:"required_verifications"`
}

// GetProofRequirements returns the live verification requirements for the
// goal. Owner only, since it reveals the verifier set.
func (s *GoalService) GetProofRequirements(ctx context.Context, ownerID, goalID uint) (*ProofRequirements, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.OwnerID != ownerID {
		return nil, models.NewForbiddenError("Only the goal owner can view proof requirements")
	}
	voters, err := s.scope.EligibleVoters(ctx, goal)
	if err != nil {
		return nil, err
	}
	return &ProofRequirements{
		EligibleVoters:        voters,
		RequiredVerifications: len(voters),
	}, nil
}
