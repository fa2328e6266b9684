package service

import (
	"context"
	"testing"

	"strive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntervalService(env *testEnv) *IntervalService {
	return NewIntervalService(env.changeRepo, env.goalRepo, env.userRepo,
		env.scope, env.engine, env.emitter)
}

func TestRequestChangeValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends) // interval 7
	svc := newIntervalService(env)
	ctx := context.Background()

	_, err := svc.RequestChange(ctx, owner.ID, goal.ID, 0)
	requireAppErrCode(t, err, models.CodeValidation)

	_, err = svc.RequestChange(ctx, owner.ID, goal.ID, 7)
	requireAppErrCode(t, err, models.CodeValidation)

	_, err = svc.RequestChange(ctx, friend.ID, goal.ID, 14)
	requireAppErrCode(t, err, models.CodeForbidden)
}

func TestRequestChangeRejectsPrivateGoal(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyPrivate)
	svc := newIntervalService(env)

	// Private goals fail on their privacy mode, not on an empty voter set.
	_, err := svc.RequestChange(context.Background(), owner.ID, goal.ID, 14)
	requireAppErrCode(t, err, models.CodeInvalidState)
}

func TestRequestChangeSinglePendingPerGoal(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)
	svc := newIntervalService(env)
	ctx := context.Background()

	req, err := svc.RequestChange(ctx, owner.ID, goal.ID, 14)
	require.NoError(t, err)
	assert.Equal(t, 7, req.CurrentInterval)
	assert.Equal(t, 14, req.RequestedInterval)
	assert.Equal(t, 1, req.RequiredVerifications)

	_, err = svc.RequestChange(ctx, owner.ID, goal.ID, 21)
	requireAppErrCode(t, err, models.CodeConflict)

	requested := env.emitter.byKind(models.NotificationIntervalChangeRequested)
	require.Len(t, requested, 1)
	assert.Equal(t, friend.ID, requested[0].RecipientID)
}

func TestIntervalApprovalAppliesNewInterval(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)
	svc := newIntervalService(env)
	ctx := context.Background()

	req, err := svc.RequestChange(ctx, owner.ID, goal.ID, 14)
	require.NoError(t, err)

	result, err := svc.CastVote(ctx, friend.ID, req.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusApproved, result.Status)

	var storedGoal models.Goal
	require.NoError(t, env.db.First(&storedGoal, goal.ID).Error)
	assert.Equal(t, 14, storedGoal.MilestoneIntervalDays)

	stored, err := env.changeRepo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusApproved, stored.Status)
	assert.NotNil(t, stored.ResolvedAt)

	resolved := env.emitter.byKind(models.NotificationIntervalChangeResolved)
	require.Len(t, resolved, 1)
	assert.Equal(t, owner.ID, resolved[0].RecipientID)
}

func TestIntervalApprovalSkipsStaleWrite(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)
	svc := newIntervalService(env)
	ctx := context.Background()

	req, err := svc.RequestChange(ctx, owner.ID, goal.ID, 14)
	require.NoError(t, err)

	// The interval moves underneath the pending request.
	require.NoError(t, env.db.Model(&models.Goal{}).
		Where("id = ?", goal.ID).
		Update("milestone_interval_days", 3).Error)

	result, err := svc.CastVote(ctx, friend.ID, req.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusApproved, result.Status,
		"the request still resolves")

	var storedGoal models.Goal
	require.NoError(t, env.db.First(&storedGoal, goal.ID).Error)
	assert.Equal(t, 3, storedGoal.MilestoneIntervalDays,
		"the stale write must be skipped")
}

func TestIntervalRejectionLeavesIntervalUnchanged(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)
	svc := newIntervalService(env)
	ctx := context.Background()

	req, err := svc.RequestChange(ctx, owner.ID, goal.ID, 14)
	require.NoError(t, err)

	result, err := svc.CastVote(ctx, friend.ID, req.ID, false, "too slow")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusRejected, result.Status)

	var storedGoal models.Goal
	require.NoError(t, env.db.First(&storedGoal, goal.ID).Error)
	assert.Equal(t, 7, storedGoal.MilestoneIntervalDays)

	// A resolved request no longer blocks a new one.
	_, err = svc.RequestChange(ctx, owner.ID, goal.ID, 14)
	require.NoError(t, err)
}
