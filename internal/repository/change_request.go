package repository

import (
	"context"
	"errors"

	"strive/internal/models"

	"gorm.io/gorm"
)

// ChangeRequestRepository defines the interface for interval change request
// data operations.
type ChangeRequestRepository interface {
	Create(ctx context.Context, req *models.IntervalChangeRequest) error
	GetByID(ctx context.Context, id uint) (*models.IntervalChangeRequest, error)
	ListByGoal(ctx context.Context, goalID uint) ([]models.IntervalChangeRequest, error)
	GetPendingByGoal(ctx context.Context, goalID uint) (*models.IntervalChangeRequest, error)
}

type changeRequestRepository struct {
	db *gorm.DB
}

// NewChangeRequestRepository creates a new change request repository
func NewChangeRequestRepository(db *gorm.DB) ChangeRequestRepository {
	return &changeRequestRepository{db: db}
}

func (r *changeRequestRepository) Create(ctx context.Context, req *models.IntervalChangeRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *changeRequestRepository) GetByID(ctx context.Context, id uint) (*models.IntervalChangeRequest, error) {
	var req models.IntervalChangeRequest
	if err := r.db.WithContext(ctx).
		Preload("Votes").
		Preload("Votes.Voter").
		First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Interval change request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *changeRequestRepository) ListByGoal(ctx context.Context, goalID uint) ([]models.IntervalChangeRequest, error) {
	var reqs []models.IntervalChangeRequest
	if err := r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Preload("Votes").
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *changeRequestRepository) GetPendingByGoal(ctx context.Context, goalID uint) (*models.IntervalChangeRequest, error) {
	var req models.IntervalChangeRequest
	if err := r.db.WithContext(ctx).
		Where("goal_id = ? AND status = ?", goalID, models.ApprovalStatusPending).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}
