// Package service contains the business logic for goals, evidence approval,
// and the social graph.
package service

import (
	"context"

	"strive/internal/models"
	"strive/internal/repository"
)

// ScopeService resolves who may view a goal and who may verify its
// submissions. Verification scope is always computed from the live friend
// graph; callers that need a frozen count must snapshot the result.
type ScopeService struct {
	friendRepo repository.FriendRepository
	goalRepo   repository.GoalRepository
}

// NewScopeService returns a new ScopeService.
func NewScopeService(friendRepo repository.FriendRepository, goalRepo repository.GoalRepository) *ScopeService {
	return &ScopeService{
		friendRepo: friendRepo,
		goalRepo:   goalRepo,
	}
}

// CanView reports whether viewerID may see the goal at all.
func (s *ScopeService) CanView(ctx context.Context, goal *models.Goal, viewerID uint) (bool, error) {
	if goal.OwnerID == viewerID {
		return true, nil
	}
	switch goal.Privacy {
	case models.GoalPrivacyPrivate:
		return false, nil
	case models.GoalPrivacyFriends:
		edge, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, goal.OwnerID, viewerID)
		if err != nil {
			return false, err
		}
		return edge.IsAccepted(), nil
	case models.GoalPrivacySelectFriends:
		grant, err := s.goalRepo.GetAllowedViewer(ctx, goal.ID, viewerID)
		if err != nil {
			return false, err
		}
		if grant == nil {
			return false, nil
		}
		// A grant survives an unfriending only as a dead row; the viewer
		// must still be an accepted friend.
		edge, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, goal.OwnerID, viewerID)
		if err != nil {
			return false, err
		}
		return edge.IsAccepted(), nil
	}
	return false, nil
}

// EligibleVoters returns the IDs of users currently allowed to verify
// submissions on the goal. The goal owner is never eligible. Private goals
// have no verifiers.
func (s *ScopeService) EligibleVoters(ctx context.Context, goal *models.Goal) ([]uint, error) {
	switch goal.Privacy {
	case models.GoalPrivacyPrivate:
		return nil, nil
	case models.GoalPrivacyFriends:
		return s.friendRepo.GetFriendIDs(ctx, goal.OwnerID)
	case models.GoalPrivacySelectFriends:
		grants, err := s.goalRepo.ListAllowedViewers(ctx, goal.ID)
		if err != nil {
			return nil, err
		}
		friendIDs, err := s.friendRepo.GetFriendIDs(ctx, goal.OwnerID)
		if err != nil {
			return nil, err
		}
		friends := make(map[uint]bool, len(friendIDs))
		for _, id := range friendIDs {
			friends[id] = true
		}
		var voters []uint
		for _, g := range grants {
			if g.CanVerify && friends[g.UserID] {
				voters = append(voters, g.UserID)
			}
		}
		return voters, nil
	}
	return nil, nil
}

// IsEligibleVoter reports whether userID is currently in the goal's
// verification scope.
func (s *ScopeService) IsEligibleVoter(ctx context.Context, goal *models.Goal, userID uint) (bool, error) {
	if userID == goal.OwnerID {
		return false, nil
	}
	voters, err := s.EligibleVoters(ctx, goal)
	if err != nil {
		return false, err
	}
	for _, id := range voters {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}
