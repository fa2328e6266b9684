package repository

import (
	"context"
	"errors"
	"time"

	"strive/internal/models"
	"strive/internal/observability"

	"gorm.io/gorm"
)

// MilestoneRepository defines the interface for milestone data operations
type MilestoneRepository interface {
	CreateBatch(ctx context.Context, milestones []models.Milestone) error
	GetByID(ctx context.Context, id uint) (*models.Milestone, error)
	ListByGoal(ctx context.Context, goalID uint) ([]models.Milestone, error)
	CountOpenByGoal(ctx context.Context, goalID uint) (int64, error)
	MarkCompleted(ctx context.Context, milestoneID uint, at time.Time) error
	FailOverdue(ctx context.Context, now time.Time) (int64, error)
	ListGoalsWithOverdue(ctx context.Context, now time.Time) ([]uint, error)
}

type milestoneRepository struct {
	db *gorm.DB
}

// NewMilestoneRepository creates a new milestone repository
func NewMilestoneRepository(db *gorm.DB) MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) CreateBatch(ctx context.Context, milestones []models.Milestone) error {
	if len(milestones) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&milestones).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *milestoneRepository) GetByID(ctx context.Context, id uint) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := r.db.WithContext(ctx).First(&milestone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Milestone", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &milestone, nil
}

func (r *milestoneRepository) ListByGoal(ctx context.Context, goalID uint) ([]models.Milestone, error) {
	var milestones []models.Milestone
	if err := r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Order("order_index ASC").
		Find(&milestones).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return milestones, nil
}

func (r *milestoneRepository) CountOpenByGoal(ctx context.Context, goalID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Milestone{}).
		Where("goal_id = ? AND completed = ? AND failed = ?", goalID, false, false).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// MarkCompleted is idempotent: a milestone already completed or failed is
// left untouched.
func (r *milestoneRepository) MarkCompleted(ctx context.Context, milestoneID uint, at time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Milestone{}).
		Where("id = ? AND completed = ? AND failed = ?", milestoneID, false, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FailOverdue marks every open milestone whose due date has passed as failed
// and returns the number of rows changed.
func (r *milestoneRepository) FailOverdue(ctx context.Context, now time.Time) (int64, error) {
	defer observability.TrackQuery("fail_overdue", "milestones")()
	res := r.db.WithContext(ctx).
		Model(&models.Milestone{}).
		Where("completed = ? AND failed = ? AND due_date IS NOT NULL AND due_date < ?", false, false, now).
		Update("failed", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// ListGoalsWithOverdue returns the distinct goal IDs that have at least one
// open milestone past its due date. Used by the sweep to cascade goal status.
func (r *milestoneRepository) ListGoalsWithOverdue(ctx context.Context, now time.Time) ([]uint, error) {
	defer observability.TrackQuery("list_overdue_goals", "milestones")()
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Milestone{}).
		Distinct("goal_id").
		Where("completed = ? AND failed = ? AND due_date IS NOT NULL AND due_date < ?", false, false, now).
		Pluck("goal_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
