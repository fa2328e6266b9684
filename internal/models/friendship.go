package models

import "time"

// FriendshipStatus represents the stored status of a friendship edge.
type FriendshipStatus string

const (
	// FriendshipStatusPending indicates a friend request awaiting a response.
	FriendshipStatusPending FriendshipStatus = "pending"
	// FriendshipStatusAccepted indicates an accepted friendship.
	FriendshipStatusAccepted FriendshipStatus = "accepted"
	// FriendshipStatusRejected indicates a declined friend request.
	FriendshipStatusRejected FriendshipStatus = "rejected"
	// FriendshipStatusBlocked indicates a blocked relationship.
	FriendshipStatusBlocked FriendshipStatus = "blocked"
)

// RelationshipStatus is a friendship status projected onto one viewer's
// perspective. The stored edge is directed, so the same row reads differently
// for the requester and the addressee.
type RelationshipStatus string

const (
	// RelationshipNone means no edge exists between the two users.
	RelationshipNone RelationshipStatus = "none"
	// RelationshipOutgoingPending means the viewer sent a request that is still open.
	RelationshipOutgoingPending RelationshipStatus = "outgoing_pending"
	// RelationshipIncomingPending means the viewer received a request that is still open.
	RelationshipIncomingPending RelationshipStatus = "incoming_pending"
	// RelationshipAccepted means the two users are friends.
	RelationshipAccepted RelationshipStatus = "accepted"
	// RelationshipBlocked means the relationship is blocked.
	RelationshipBlocked RelationshipStatus = "blocked"
)

// Friendship is the single directed row for a relationship between two users.
// Invariant: at most one edge per unordered user pair; the reverse direction
// is never stored, it is derived via StatusFor.
type Friendship struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RequesterID uint             `gorm:"not null;uniqueIndex:idx_friendship_users" json:"requester_id"`
	AddresseeID uint             `gorm:"not null;uniqueIndex:idx_friendship_users" json:"addressee_id"`
	Status      FriendshipStatus `gorm:"type:varchar(20);default:'pending';index:idx_friendships_status" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Relationships
	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Addressee User `gorm:"foreignKey:AddresseeID" json:"addressee,omitempty"`
}

// TableName specifies the table name for GORM.
func (Friendship) TableName() string {
	return "friendships"
}

// StatusFor projects the directed edge onto the given viewer. Comparing the
// raw Status string against a viewer-specific literal is wrong for pending
// edges; always go through this projection.
func (f *Friendship) StatusFor(viewerID uint) RelationshipStatus {
	if f == nil {
		return RelationshipNone
	}
	switch f.Status {
	case FriendshipStatusAccepted:
		return RelationshipAccepted
	case FriendshipStatusBlocked:
		return RelationshipBlocked
	case FriendshipStatusPending:
		if f.RequesterID == viewerID {
			return RelationshipOutgoingPending
		}
		return RelationshipIncomingPending
	default:
		// A rejected edge reads as no relationship; a new request may be sent.
		return RelationshipNone
	}
}

// OtherUser returns the counterpart of the given user on this edge.
func (f *Friendship) OtherUser(userID uint) uint {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}

// IsAccepted reports whether the edge represents an active friendship,
// regardless of direction.
func (f *Friendship) IsAccepted() bool {
	return f != nil && f.Status == FriendshipStatusAccepted
}
