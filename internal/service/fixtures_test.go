package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"strive/internal/models"
	"strive/internal/repository"
	"strive/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv bundles a fresh database with the real repositories and the
// approval machinery wired together.
type testEnv struct {
	db            *gorm.DB
	userRepo      repository.UserRepository
	friendRepo    repository.FriendRepository
	goalRepo      repository.GoalRepository
	milestoneRepo repository.MilestoneRepository
	proofRepo     repository.ProofRepository
	changeRepo    repository.ChangeRequestRepository
	scope         *ScopeService
	engine        *ApprovalEngine
	emitter       *captureEmitter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	friendRepo := repository.NewFriendRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	scope := NewScopeService(friendRepo, goalRepo)
	return &testEnv{
		db:            db,
		userRepo:      repository.NewUserRepository(db),
		friendRepo:    friendRepo,
		goalRepo:      goalRepo,
		milestoneRepo: repository.NewMilestoneRepository(db),
		proofRepo:     repository.NewProofRepository(db),
		changeRepo:    repository.NewChangeRequestRepository(db),
		scope:         scope,
		engine:        NewApprovalEngine(db, goalRepo, scope),
		emitter:       &captureEmitter{},
	}
}

// captureEmitter records emitted notifications for assertions.
type captureEmitter struct {
	mu      sync.Mutex
	emitted []models.Notification
}

func (c *captureEmitter) Emit(_ context.Context, n *models.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitted = append(c.emitted, *n)
}

func (c *captureEmitter) byKind(kind models.NotificationKind) []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Notification
	for _, n := range c.emitted {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

var userSeq int

func (e *testEnv) createUser(t *testing.T) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Username:     fmt.Sprintf("user%d", userSeq),
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		PasswordHash: "x",
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) befriend(t *testing.T, a, b uint) *models.Friendship {
	t.Helper()
	edge := &models.Friendship{
		RequesterID: a,
		AddresseeID: b,
		Status:      models.FriendshipStatusAccepted,
	}
	require.NoError(t, e.db.Create(edge).Error)
	return edge
}

func (e *testEnv) createGoal(t *testing.T, ownerID uint, privacy models.GoalPrivacy) *models.Goal {
	t.Helper()
	now := time.Now()
	goal := &models.Goal{
		OwnerID:               ownerID,
		Title:                 "Run a marathon",
		Privacy:               privacy,
		MilestoneIntervalDays: 7,
		StartDate:             now,
		Deadline:              now.Add(28 * 24 * time.Hour),
		Status:                models.GoalStatusActive,
	}
	require.NoError(t, e.db.Create(goal).Error)
	return goal
}

func (e *testEnv) createProof(t *testing.T, goal *models.Goal, required int) *models.Proof {
	t.Helper()
	proof := &models.Proof{
		GoalID:                goal.ID,
		OwnerID:               goal.OwnerID,
		StorageKey:            "goals/1/evidence.jpg",
		Status:                models.ApprovalStatusPending,
		RequiredVerifications: required,
	}
	require.NoError(t, e.db.Create(proof).Error)
	return proof
}
