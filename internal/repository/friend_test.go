package repository

import (
	"context"
	"testing"

	"strive/internal/models"
	"strive/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRepositoryEdgeLookupIsDirectionless(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	u1 := &models.User{Username: "alice_repo", Email: "alice_repo@example.com", PasswordHash: "x"}
	u2 := &models.User{Username: "bob_repo", Email: "bob_repo@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(u1).Error)
	require.NoError(t, db.Create(u2).Error)

	edge, err := repo.GetFriendshipBetweenUsers(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.Nil(t, edge, "no edge yet")

	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: u1.ID,
		AddresseeID: u2.ID,
		Status:      models.FriendshipStatusPending,
	}))

	forward, err := repo.GetFriendshipBetweenUsers(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	require.NotNil(t, forward)

	reverse, err := repo.GetFriendshipBetweenUsers(ctx, u2.ID, u1.ID)
	require.NoError(t, err)
	require.NotNil(t, reverse)
	assert.Equal(t, forward.ID, reverse.ID, "the single edge is found from both sides")
}

func TestFriendRepositoryFriendIDsAndCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	owner := &models.User{Username: "owner_repo", Email: "owner_repo@example.com", PasswordHash: "x"}
	f1 := &models.User{Username: "f1_repo", Email: "f1_repo@example.com", PasswordHash: "x"}
	f2 := &models.User{Username: "f2_repo", Email: "f2_repo@example.com", PasswordHash: "x"}
	pending := &models.User{Username: "p_repo", Email: "p_repo@example.com", PasswordHash: "x"}
	for _, u := range []*models.User{owner, f1, f2, pending} {
		require.NoError(t, db.Create(u).Error)
	}

	for _, edge := range []*models.Friendship{
		{RequesterID: owner.ID, AddresseeID: f1.ID, Status: models.FriendshipStatusAccepted},
		{RequesterID: f2.ID, AddresseeID: owner.ID, Status: models.FriendshipStatusAccepted},
		{RequesterID: owner.ID, AddresseeID: pending.ID, Status: models.FriendshipStatusPending},
	} {
		require.NoError(t, db.Create(edge).Error)
	}

	ids, err := repo.GetFriendIDs(ctx, owner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{f1.ID, f2.ID}, ids, "pending edges are not friendships")

	count, err := repo.CountFriends(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.RemoveFriendship(ctx, f1.ID, owner.ID))
	ids, err = repo.GetFriendIDs(ctx, owner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{f2.ID}, ids)
}

func TestFriendRepositoryPendingRequestViews(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	alice := &models.User{Username: "alice_pr", Email: "alice_pr@example.com", PasswordHash: "x"}
	bob := &models.User{Username: "bob_pr", Email: "bob_pr@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(alice).Error)
	require.NoError(t, db.Create(bob).Error)

	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: alice.ID,
		AddresseeID: bob.ID,
		Status:      models.FriendshipStatusPending,
	}))

	incoming, err := repo.GetPendingRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, alice.ID, incoming[0].RequesterID)

	sent, err := repo.GetSentRequests(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, bob.ID, sent[0].AddresseeID)

	require.NoError(t, repo.UpdateStatus(ctx, incoming[0].ID, models.FriendshipStatusAccepted))

	incoming, err = repo.GetPendingRequests(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, incoming)
}
