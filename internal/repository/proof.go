package repository

import (
	"context"
	"errors"

	"strive/internal/models"

	"gorm.io/gorm"
)

// ProofRepository defines the interface for proof data operations.
// Vote writes happen inside the approval transaction and are not part of
// this interface.
type ProofRepository interface {
	Create(ctx context.Context, proof *models.Proof) error
	GetByID(ctx context.Context, id uint) (*models.Proof, error)
	ListByGoal(ctx context.Context, goalID uint) ([]models.Proof, error)
	ListPendingByOwner(ctx context.Context, ownerID uint) ([]models.Proof, error)
	HasVoted(ctx context.Context, proofID, voterID uint) (bool, error)
}

type proofRepository struct {
	db *gorm.DB
}

// NewProofRepository creates a new proof repository
func NewProofRepository(db *gorm.DB) ProofRepository {
	return &proofRepository{db: db}
}

func (r *proofRepository) Create(ctx context.Context, proof *models.Proof) error {
	if err := r.db.WithContext(ctx).Create(proof).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *proofRepository) GetByID(ctx context.Context, id uint) (*models.Proof, error) {
	var proof models.Proof
	if err := r.db.WithContext(ctx).
		Preload("Votes").
		Preload("Votes.Voter").
		First(&proof, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Proof", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &proof, nil
}

func (r *proofRepository) ListByGoal(ctx context.Context, goalID uint) ([]models.Proof, error) {
	var proofs []models.Proof
	if err := r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Preload("Votes").
		Order("created_at DESC").
		Find(&proofs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return proofs, nil
}

func (r *proofRepository) ListPendingByOwner(ctx context.Context, ownerID uint) ([]models.Proof, error) {
	var proofs []models.Proof
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, models.ApprovalStatusPending).
		Order("created_at DESC").
		Find(&proofs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return proofs, nil
}

func (r *proofRepository) HasVoted(ctx context.Context, proofID, voterID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProofVote{}).
		Where("proof_id = ? AND voter_id = ?", proofID, voterID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
