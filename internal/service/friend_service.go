package service

import (
	"context"
	"fmt"

	"strive/internal/models"
	"strive/internal/repository"
)

// FriendService provides friend-request and friendship business logic.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	emitter    NotificationEmitter
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository, emitter NotificationEmitter) *FriendService {
	if emitter == nil {
		emitter = NoopEmitter()
	}
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		emitter:    emitter,
	}
}

// SendFriendRequest sends a friend request to the target user. Sending a
// request to someone whose request to you is still pending accepts that
// request instead of creating a crossing edge.
func (s *FriendService) SendFriendRequest(ctx context.Context, userID, targetUserID uint) (*models.Friendship, error) {
	if userID == targetUserID {
		return nil, models.NewValidationError("Cannot send friend request to yourself")
	}

	sender, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return nil, err
	}

	existing, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, userID, targetUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.StatusFor(userID) {
		case models.RelationshipAccepted:
			return nil, models.NewValidationError("You are already friends")
		case models.RelationshipOutgoingPending:
			return nil, models.NewValidationError("Friend request already sent")
		case models.RelationshipIncomingPending:
			// Mutual intent; accept their request instead.
			return s.AcceptFriendRequest(ctx, userID, existing.ID)
		case models.RelationshipBlocked:
			return nil, models.NewForbiddenError("This relationship is blocked")
		case models.RelationshipNone:
			// A rejected edge reads as none. Clear it so a fresh request
			// can be created.
			if err := s.friendRepo.RemoveFriendship(ctx, userID, targetUserID); err != nil {
				return nil, err
			}
		}
	}

	friendship := &models.Friendship{
		RequesterID: userID,
		AddresseeID: targetUserID,
		Status:      models.FriendshipStatusPending,
	}
	if err := s.friendRepo.Create(ctx, friendship); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, &models.Notification{
		RecipientID: targetUserID,
		ActorID:     &userID,
		Kind:        models.NotificationFriendRequest,
		Message:     fmt.Sprintf("%s sent you a friend request", sender.Username),
	})

	return s.friendRepo.GetByID(ctx, friendship.ID)
}

// AcceptFriendRequest accepts a pending friend request.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, userID, requestID uint) (*models.Friendship, error) {
	friendship, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if friendship.AddresseeID != userID {
		return nil, models.NewForbiddenError("You can only accept friend requests sent to you")
	}
	if friendship.Status != models.FriendshipStatusPending {
		return nil, models.NewInvalidStateError("Friend request is not pending")
	}

	if err := s.friendRepo.UpdateStatus(ctx, requestID, models.FriendshipStatusAccepted); err != nil {
		return nil, err
	}

	accepter, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		s.emitter.Emit(ctx, &models.Notification{
			RecipientID: friendship.RequesterID,
			ActorID:     &userID,
			Kind:        models.NotificationFriendRequestAccepted,
			Message:     fmt.Sprintf("%s accepted your friend request", accepter.Username),
		})
	}

	return s.friendRepo.GetByID(ctx, requestID)
}

// RejectFriendRequest declines a pending friend request. The edge is kept
// with rejected status, which projects as no relationship for both users.
func (s *FriendService) RejectFriendRequest(ctx context.Context, userID, requestID uint) (*models.Friendship, error) {
	friendship, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if friendship.AddresseeID != userID {
		return nil, models.NewForbiddenError("You can only reject friend requests sent to you")
	}
	if friendship.Status != models.FriendshipStatusPending {
		return nil, models.NewInvalidStateError("Friend request is not pending")
	}

	if err := s.friendRepo.UpdateStatus(ctx, requestID, models.FriendshipStatusRejected); err != nil {
		return nil, err
	}

	return s.friendRepo.GetByID(ctx, requestID)
}

// CancelFriendRequest withdraws a pending request the user sent.
func (s *FriendService) CancelFriendRequest(ctx context.Context, userID, requestID uint) error {
	friendship, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if friendship.RequesterID != userID {
		return models.NewForbiddenError("You can only cancel requests you sent")
	}
	if friendship.Status != models.FriendshipStatusPending {
		return models.NewInvalidStateError("Friend request is not pending")
	}

	return s.friendRepo.RemoveFriendship(ctx, friendship.RequesterID, friendship.AddresseeID)
}

// RemoveFriend deletes an accepted friendship in either direction.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID uint) error {
	edge, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if edge == nil || !edge.IsAccepted() {
		return models.NewNotFoundError("Friendship", friendID)
	}
	return s.friendRepo.RemoveFriendship(ctx, userID, friendID)
}

// GetFriends returns the list of friends for the user.
func (s *FriendService) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.friendRepo.GetFriends(ctx, userID)
}

// GetPendingRequests returns pending friend requests addressed to the user.
func (s *FriendService) GetPendingRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.friendRepo.GetPendingRequests(ctx, userID)
}

// GetSentRequests returns pending friend requests sent by the user.
func (s *FriendService) GetSentRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.friendRepo.GetSentRequests(ctx, userID)
}

// GetRelationshipStatus returns the relationship between the viewer and the
// target, projected onto the viewer's perspective.
func (s *FriendService) GetRelationshipStatus(ctx context.Context, viewerID, targetUserID uint) (models.RelationshipStatus, error) {
	if viewerID == targetUserID {
		return models.RelationshipNone, models.NewValidationError("Cannot query relationship with yourself")
	}
	edge, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, viewerID, targetUserID)
	if err != nil {
		return models.RelationshipNone, err
	}
	return edge.StatusFor(viewerID), nil
}
