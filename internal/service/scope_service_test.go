package service

import (
	"context"
	"testing"

	"strive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopePrivateGoalHasNoVoters(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyPrivate)
	ctx := context.Background()

	voters, err := env.scope.EligibleVoters(ctx, goal)
	require.NoError(t, err)
	assert.Empty(t, voters)

	visible, err := env.scope.CanView(ctx, goal, friend.ID)
	require.NoError(t, err)
	assert.False(t, visible, "private goals are owner-only")

	visible, err = env.scope.CanView(ctx, goal, owner.ID)
	require.NoError(t, err)
	assert.True(t, visible, "the owner always sees their goal")
}

func TestScopeFriendsGoalCoversAllAcceptedFriends(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	f1 := env.createUser(t)
	f2 := env.createUser(t)
	f3 := env.createUser(t)
	pendingUser := env.createUser(t)
	env.befriend(t, owner.ID, f1.ID)
	env.befriend(t, f2.ID, owner.ID)
	env.befriend(t, owner.ID, f3.ID)
	require.NoError(t, env.db.Create(&models.Friendship{
		RequesterID: owner.ID,
		AddresseeID: pendingUser.ID,
		Status:      models.FriendshipStatusPending,
	}).Error)

	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)
	ctx := context.Background()

	voters, err := env.scope.EligibleVoters(ctx, goal)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{f1.ID, f2.ID, f3.ID}, voters)

	visible, err := env.scope.CanView(ctx, goal, pendingUser.ID)
	require.NoError(t, err)
	assert.False(t, visible, "a pending request grants nothing")
}

func TestScopeSelectFriendsIntersectsGrantsWithFriends(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	verifier := env.createUser(t)
	viewerOnly := env.createUser(t)
	exFriend := env.createUser(t)
	env.befriend(t, owner.ID, verifier.ID)
	env.befriend(t, owner.ID, viewerOnly.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacySelectFriends)
	ctx := context.Background()

	for _, grant := range []models.AllowedViewer{
		{GoalID: goal.ID, UserID: verifier.ID, CanVerify: true},
		{GoalID: goal.ID, UserID: viewerOnly.ID, CanVerify: false},
		{GoalID: goal.ID, UserID: exFriend.ID, CanVerify: true}, // grant without friendship
	} {
		require.NoError(t, env.db.Create(&grant).Error)
	}

	voters, err := env.scope.EligibleVoters(ctx, goal)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{verifier.ID}, voters,
		"only granted, verify-capable, accepted friends may vote")

	visible, err := env.scope.CanView(ctx, goal, viewerOnly.ID)
	require.NoError(t, err)
	assert.True(t, visible, "a view-only grant still allows viewing")

	visible, err = env.scope.CanView(ctx, goal, exFriend.ID)
	require.NoError(t, err)
	assert.False(t, visible, "a grant without an accepted friendship is dead")
}

func TestScopeOwnerIsNeverEligible(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)
	ctx := context.Background()

	eligible, err := env.scope.IsEligibleVoter(ctx, goal, owner.ID)
	require.NoError(t, err)
	assert.False(t, eligible)

	eligible, err = env.scope.IsEligibleVoter(ctx, goal, friend.ID)
	require.NoError(t, err)
	assert.True(t, eligible)
}
