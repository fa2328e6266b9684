package repository

import (
	"context"
	"errors"

	"strive/internal/models"

	"gorm.io/gorm"
)

// FriendRepository defines the interface for friend data operations
type FriendRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetByID(ctx context.Context, id uint) (*models.Friendship, error)
	GetFriendshipBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error)
	GetFriends(ctx context.Context, userID uint) ([]models.User, error)
	GetFriendIDs(ctx context.Context, userID uint) ([]uint, error)
	CountFriends(ctx context.Context, userID uint) (int64, error)
	GetPendingRequests(ctx context.Context, userID uint) ([]models.Friendship, error)
	GetSentRequests(ctx context.Context, userID uint) ([]models.Friendship, error)
	UpdateStatus(ctx context.Context, friendshipID uint, status models.FriendshipStatus) error
	RemoveFriendship(ctx context.Context, userID1, userID2 uint) error
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	if err := r.db.WithContext(ctx).Create(friendship).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).Preload("Requester").Preload("Addressee").First(&friendship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Friendship", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendRepository) GetFriendshipBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	var friendship models.Friendship

	// The edge is stored once, in whichever direction it was requested.
	if err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userID1, userID2, userID2, userID1).
		First(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No edge exists
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendRepository) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User

	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN friendships f ON (users.id = f.requester_id OR users.id = f.addressee_id)").
		Where("f.status = ? AND (f.requester_id = ? OR f.addressee_id = ?) AND users.id != ?",
			models.FriendshipStatusAccepted, userID, userID, userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return users, nil
}

func (r *friendRepository) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint

	if err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id").
		Joins("JOIN friendships f ON (users.id = f.requester_id OR users.id = f.addressee_id)").
		Where("f.status = ? AND (f.requester_id = ? OR f.addressee_id = ?) AND users.id != ?",
			models.FriendshipStatusAccepted, userID, userID, userID).
		Scan(&ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return ids, nil
}

func (r *friendRepository) CountFriends(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)",
			models.FriendshipStatusAccepted, userID, userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *friendRepository) GetPendingRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship

	if err := r.db.WithContext(ctx).
		Where("addressee_id = ? AND status = ?", userID, models.FriendshipStatusPending).
		Preload("Requester").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return friendships, nil
}

func (r *friendRepository) GetSentRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship

	if err := r.db.WithContext(ctx).
		Where("requester_id = ? AND status = ?", userID, models.FriendshipStatusPending).
		Preload("Addressee").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return friendships, nil
}

func (r *friendRepository) UpdateStatus(ctx context.Context, friendshipID uint, status models.FriendshipStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("id = ?", friendshipID).
		Update("status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) RemoveFriendship(ctx context.Context, userID1, userID2 uint) error {
	if err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userID1, userID2, userID2, userID1).
		Delete(&models.Friendship{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
