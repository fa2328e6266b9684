package service

import (
	"context"
	"testing"
	"time"

	"strive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProofService(env *testEnv) *ProofService {
	return NewProofService(env.proofRepo, env.goalRepo, env.milestoneRepo, env.userRepo,
		env.scope, env.engine, env.emitter)
}

func TestCreateProofFreezesRequirement(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	f1 := env.createUser(t)
	f2 := env.createUser(t)
	env.befriend(t, owner.ID, f1.ID)
	env.befriend(t, owner.ID, f2.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)
	svc := newProofService(env)
	ctx := context.Background()

	proof, err := svc.CreateProof(ctx, owner.ID, CreateProofInput{
		GoalID:     goal.ID,
		StorageKey: "goals/1/run.jpg",
		Caption:    "morning run",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, proof.RequiredVerifications)
	assert.Equal(t, models.ApprovalStatusPending, proof.Status)

	submitted := env.emitter.byKind(models.NotificationProofSubmitted)
	require.Len(t, submitted, 2)
	recipients := []uint{submitted[0].RecipientID, submitted[1].RecipientID}
	assert.ElementsMatch(t, []uint{f1.ID, f2.ID}, recipients)

	// Later graph changes do not move the frozen bar.
	require.NoError(t, env.friendRepo.RemoveFriendship(ctx, owner.ID, f2.ID))
	stored, err := env.proofRepo.GetByID(ctx, proof.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RequiredVerifications)

	result, err := svc.CastVote(ctx, f1.ID, proof.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusPending, result.Status,
		"one approval of two required must not resolve, even after an unfriending")
}

func TestCreateProofSkipsNotificationsWhenOwnerRowGone(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)
	svc := newProofService(env)

	// The owner row vanishing between goal load and notification assembly
	// must not fail the submission; emission is fire-and-forget.
	require.NoError(t, env.db.Delete(&models.User{}, owner.ID).Error)

	proof, err := svc.CreateProof(context.Background(), owner.ID, CreateProofInput{
		GoalID:     goal.ID,
		StorageKey: "goals/1/run.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusPending, proof.Status)
	assert.Empty(t, env.emitter.byKind(models.NotificationProofSubmitted))
}

func TestCreateProofRequiresVerifiers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)
	svc := newProofService(env)

	_, err := svc.CreateProof(context.Background(), owner.ID, CreateProofInput{
		GoalID:     goal.ID,
		StorageKey: "goals/1/run.jpg",
	})
	requireAppErrCode(t, err, models.CodeNoEligibleVoters)
}

func TestCreateProofRejectsPrivateGoal(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyPrivate)
	svc := newProofService(env)

	_, err := svc.CreateProof(context.Background(), owner.ID, CreateProofInput{
		GoalID:     goal.ID,
		StorageKey: "goals/1/run.jpg",
	})
	requireAppErrCode(t, err, models.CodeInvalidState)
}

func TestCreateProofOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)
	svc := newProofService(env)

	_, err := svc.CreateProof(context.Background(), friend.ID, CreateProofInput{
		GoalID:     goal.ID,
		StorageKey: "goals/1/run.jpg",
	})
	requireAppErrCode(t, err, models.CodeForbidden)
}

func TestProofApprovalCompletesMilestoneAndGoal(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)

	due := time.Now().Add(7 * 24 * time.Hour)
	milestone := &models.Milestone{GoalID: goal.ID, Title: "Checkpoint 1", OrderIndex: 0, DueDate: &due}
	require.NoError(t, env.db.Create(milestone).Error)

	svc := newProofService(env)
	ctx := context.Background()

	proof, err := svc.CreateProof(ctx, owner.ID, CreateProofInput{
		GoalID:      goal.ID,
		MilestoneID: &milestone.ID,
		StorageKey:  "goals/1/final.jpg",
	})
	require.NoError(t, err)
	require.Equal(t, 1, proof.RequiredVerifications)

	result, err := svc.CastVote(ctx, friend.ID, proof.ID, true, "nice work")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusApproved, result.Status)

	var storedMilestone models.Milestone
	require.NoError(t, env.db.First(&storedMilestone, milestone.ID).Error)
	assert.True(t, storedMilestone.Completed)
	require.NotNil(t, storedMilestone.CompletedAt)

	// It was the only milestone, so the goal completes with it.
	var storedGoal models.Goal
	require.NoError(t, env.db.First(&storedGoal, goal.ID).Error)
	assert.Equal(t, models.GoalStatusCompleted, storedGoal.Status)

	resolved := env.emitter.byKind(models.NotificationProofResolved)
	require.Len(t, resolved, 1)
	assert.Equal(t, owner.ID, resolved[0].RecipientID)

	completed := env.emitter.byKind(models.NotificationMilestoneCompleted)
	require.Len(t, completed, 1)
	assert.Contains(t, completed[0].Message, "goal achieved")
}

func TestProofRejectionLeavesMilestoneOpen(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)

	due := time.Now().Add(7 * 24 * time.Hour)
	milestone := &models.Milestone{GoalID: goal.ID, Title: "Checkpoint 1", OrderIndex: 0, DueDate: &due}
	require.NoError(t, env.db.Create(milestone).Error)

	svc := newProofService(env)
	ctx := context.Background()

	proof, err := svc.CreateProof(ctx, owner.ID, CreateProofInput{
		GoalID:      goal.ID,
		MilestoneID: &milestone.ID,
		StorageKey:  "goals/1/blurry.jpg",
	})
	require.NoError(t, err)

	result, err := svc.CastVote(ctx, friend.ID, proof.ID, false, "can't tell what this is")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusRejected, result.Status)

	var storedMilestone models.Milestone
	require.NoError(t, env.db.First(&storedMilestone, milestone.ID).Error)
	assert.True(t, storedMilestone.Open(), "a rejected proof must not touch the milestone")

	var storedGoal models.Goal
	require.NoError(t, env.db.First(&storedGoal, goal.ID).Error)
	assert.Equal(t, models.GoalStatusActive, storedGoal.Status)

	resolved := env.emitter.byKind(models.NotificationProofResolved)
	require.Len(t, resolved, 1)
	assert.Contains(t, resolved[0].Message, "rejected")
}

func TestGetProofHiddenFromStrangers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	friend := env.createUser(t)
	stranger := env.createUser(t)
	env.befriend(t, owner.ID, friend.ID)
	goal := env.createGoal(t, owner.ID, models.GoalPrivacyFriends)
	proof := env.createProof(t, goal, 1)
	svc := newProofService(env)
	ctx := context.Background()

	got, err := svc.GetProof(ctx, friend.ID, proof.ID)
	require.NoError(t, err)
	assert.Equal(t, proof.ID, got.ID)

	_, err = svc.GetProof(ctx, stranger.ID, proof.ID)
	requireAppErrCode(t, err, models.CodeNotFound)
}
