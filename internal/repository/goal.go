package repository

import (
	"context"
	"errors"

	"strive/internal/models"

	"gorm.io/gorm"
)

// GoalRepository defines the interface for goal and viewer-list data operations
type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal) error
	GetByID(ctx context.Context, id uint) (*models.Goal, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Goal, error)
	Update(ctx context.Context, goal *models.Goal) error
	UpdateStatus(ctx context.Context, goalID uint, status models.GoalStatus) error
	UpdateInterval(ctx context.Context, goalID uint, days int) error
	Delete(ctx context.Context, goalID uint) error

	AddAllowedViewer(ctx context.Context, viewer *models.AllowedViewer) error
	RemoveAllowedViewer(ctx context.Context, goalID, userID uint) error
	ListAllowedViewers(ctx context.Context, goalID uint) ([]models.AllowedViewer, error)
	GetAllowedViewer(ctx context.Context, goalID, userID uint) (*models.AllowedViewer, error)
}

type goalRepository struct {
	db *gorm.DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if err := r.db.WithContext(ctx).Create(goal).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *goalRepository) GetByID(ctx context.Context, id uint) (*models.Goal, error) {
	var goal models.Goal
	if err := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("milestones.order_index ASC")
		}).
		Preload("AllowedViewers").
		First(&goal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Goal", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &goal, nil
}

func (r *goalRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Goal, error) {
	var goals []models.Goal
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&goals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return goals, nil
}

func (r *goalRepository) Update(ctx context.Context, goal *models.Goal) error {
	if err := r.db.WithContext(ctx).Save(goal).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *goalRepository) UpdateStatus(ctx context.Context, goalID uint, status models.GoalStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Goal{}).
		Where("id = ?", goalID).
		Update("status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *goalRepository) UpdateInterval(ctx context.Context, goalID uint, days int) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Goal{}).
		Where("id = ?", goalID).
		Update("milestone_interval_days", days).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *goalRepository) Delete(ctx context.Context, goalID uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Goal{}, goalID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *goalRepository) AddAllowedViewer(ctx context.Context, viewer *models.AllowedViewer) error {
	if err := r.db.WithContext(ctx).Create(viewer).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *goalRepository) RemoveAllowedViewer(ctx context.Context, goalID, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("goal_id = ? AND user_id = ?", goalID, userID).
		Delete(&models.AllowedViewer{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *goalRepository) ListAllowedViewers(ctx context.Context, goalID uint) ([]models.AllowedViewer, error) {
	var viewers []models.AllowedViewer
	if err := r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Preload("User").
		Find(&viewers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return viewers, nil
}

func (r *goalRepository) GetAllowedViewer(ctx context.Context, goalID, userID uint) (*models.AllowedViewer, error) {
	var viewer models.AllowedViewer
	if err := r.db.WithContext(ctx).
		Where("goal_id = ? AND user_id = ?", goalID, userID).
		First(&viewer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &viewer, nil
}
