package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"strive/internal/middleware"
	"strive/internal/models"
	"strive/internal/observability"
	"strive/internal/repository"
)

// MilestoneService owns the milestone schedule and the deadline sweep.
type MilestoneService struct {
	milestoneRepo repository.MilestoneRepository
	goalRepo      repository.GoalRepository
}

// NewMilestoneService returns a new MilestoneService.
func NewMilestoneService(milestoneRepo repository.MilestoneRepository, goalRepo repository.GoalRepository) *MilestoneService {
	return &MilestoneService{
		milestoneRepo: milestoneRepo,
		goalRepo:      goalRepo,
	}
}

// GenerateSchedule builds the milestone rows for a goal: one checkpoint per
// interval from the start date up to and including the deadline. A zero
// interval yields a single milestone due at the deadline.
func GenerateSchedule(goal *models.Goal) []models.Milestone {
	deadline := goal.Deadline
	if goal.MilestoneIntervalDays <= 0 {
		due := deadline
		return []models.Milestone{{
			GoalID:     goal.ID,
			Title:      "Final checkpoint",
			OrderIndex: 0,
			DueDate:    &due,
		}}
	}

	var milestones []models.Milestone
	interval := time.Duration(goal.MilestoneIntervalDays) * 24 * time.Hour
	idx := 0
	for due := goal.StartDate.Add(interval); !due.After(deadline); due = due.Add(interval) {
		d := due
		milestones = append(milestones, models.Milestone{
			GoalID:     goal.ID,
			Title:      fmt.Sprintf("Checkpoint %d", idx+1),
			OrderIndex: idx,
			DueDate:    &d,
		})
		idx++
	}
	// The deadline itself is always a checkpoint.
	if len(milestones) == 0 || !milestones[len(milestones)-1].DueDate.Equal(deadline) {
		d := deadline
		milestones = append(milestones, models.Milestone{
			GoalID:     goal.ID,
			Title:      fmt.Sprintf("Checkpoint %d", idx+1),
			OrderIndex: idx,
			DueDate:    &d,
		})
	}
	return milestones
}

// ListByGoal returns the goal's milestones in schedule order.
func (s *MilestoneService) ListByGoal(ctx context.Context, goalID uint) ([]models.Milestone, error) {
	return s.milestoneRepo.ListByGoal(ctx, goalID)
}

// SweepResult summarizes one deadline sweep run.
type SweepResult struct {
	MilestonesFailed int64 `json:"milestones_failed"`
	GoalsFailed      int   `json:"goals_failed"`
}

// SweepOverdue fails every open milestone past its due date and cascades
// the failure to the owning goals. It is safe to run repeatedly and from
// multiple schedulers; already-failed rows are skipped.
func (s *MilestoneService) SweepOverdue(ctx context.Context, now time.Time) (*SweepResult, error) {
	goalIDs, err := s.milestoneRepo.ListGoalsWithOverdue(ctx, now)
	if err != nil {
		return nil, err
	}

	failed, err := s.milestoneRepo.FailOverdue(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{MilestonesFailed: failed}
	for _, goalID := range goalIDs {
		goal, err := s.goalRepo.GetByID(ctx, goalID)
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "sweep: failed to load goal",
				slog.Uint64("goal_id", uint64(goalID)), slog.String("error", err.Error()))
			continue
		}
		if goal.Status != models.GoalStatusActive {
			continue
		}
		if err := s.goalRepo.UpdateStatus(ctx, goalID, models.GoalStatusFailed); err != nil {
			middleware.Logger.ErrorContext(ctx, "sweep: failed to update goal status",
				slog.Uint64("goal_id", uint64(goalID)), slog.String("error", err.Error()))
			continue
		}
		result.GoalsFailed++
	}

	observability.MilestonesSwept.Add(float64(failed))
	middleware.Logger.InfoContext(ctx, "deadline sweep completed",
		slog.Int64("milestones_failed", failed),
		slog.Int("goals_failed", result.GoalsFailed))

	return result, nil
}
