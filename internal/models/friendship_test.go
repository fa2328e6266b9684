package models

import "testing"

func TestFriendshipStatusForProjection(t *testing.T) {
	const (
		requester uint = 1
		addressee uint = 2
	)

	tests := []struct {
		name     string
		edge     *Friendship
		viewer   uint
		expected RelationshipStatus
	}{
		{
			name:     "nil edge reads as none",
			edge:     nil,
			viewer:   requester,
			expected: RelationshipNone,
		},
		{
			name:     "pending for requester is outgoing",
			edge:     &Friendship{RequesterID: requester, AddresseeID: addressee, Status: FriendshipStatusPending},
			viewer:   requester,
			expected: RelationshipOutgoingPending,
		},
		{
			name:     "pending for addressee is incoming",
			edge:     &Friendship{RequesterID: requester, AddresseeID: addressee, Status: FriendshipStatusPending},
			viewer:   addressee,
			expected: RelationshipIncomingPending,
		},
		{
			name:     "accepted reads the same for requester",
			edge:     &Friendship{RequesterID: requester, AddresseeID: addressee, Status: FriendshipStatusAccepted},
			viewer:   requester,
			expected: RelationshipAccepted,
		},
		{
			name:     "accepted reads the same for addressee",
			edge:     &Friendship{RequesterID: requester, AddresseeID: addressee, Status: FriendshipStatusAccepted},
			viewer:   addressee,
			expected: RelationshipAccepted,
		},
		{
			name:     "rejected reads as none for requester",
			edge:     &Friendship{RequesterID: requester, AddresseeID: addressee, Status: FriendshipStatusRejected},
			viewer:   requester,
			expected: RelationshipNone,
		},
		{
			name:     "rejected reads as none for addressee",
			edge:     &Friendship{RequesterID: requester, AddresseeID: addressee, Status: FriendshipStatusRejected},
			viewer:   addressee,
			expected: RelationshipNone,
		},
		{
			name:     "blocked reads as blocked",
			edge:     &Friendship{RequesterID: requester, AddresseeID: addressee, Status: FriendshipStatusBlocked},
			viewer:   addressee,
			expected: RelationshipBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.edge.StatusFor(tt.viewer); got != tt.expected {
				t.Fatalf("StatusFor(%d) = %q, want %q", tt.viewer, got, tt.expected)
			}
		})
	}
}

func TestFriendshipOtherUser(t *testing.T) {
	edge := &Friendship{RequesterID: 7, AddresseeID: 9}
	if got := edge.OtherUser(7); got != 9 {
		t.Fatalf("OtherUser(7) = %d, want 9", got)
	}
	if got := edge.OtherUser(9); got != 7 {
		t.Fatalf("OtherUser(9) = %d, want 7", got)
	}
}

func TestFriendshipIsAccepted(t *testing.T) {
	var nilEdge *Friendship
	if nilEdge.IsAccepted() {
		t.Fatal("nil edge must not read as accepted")
	}
	pending := &Friendship{Status: FriendshipStatusPending}
	if pending.IsAccepted() {
		t.Fatal("pending edge must not read as accepted")
	}
	accepted := &Friendship{Status: FriendshipStatusAccepted}
	if !accepted.IsAccepted() {
		t.Fatal("accepted edge must read as accepted")
	}
}

func TestApprovalStatusTerminal(t *testing.T) {
	if ApprovalStatusPending.Terminal() {
		t.Fatal("pending must not be terminal")
	}
	if !ApprovalStatusApproved.Terminal() {
		t.Fatal("approved must be terminal")
	}
	if !ApprovalStatusRejected.Terminal() {
		t.Fatal("rejected must be terminal")
	}
}
