package models

import "time"

// NotificationKind classifies partner notification events.
type NotificationKind string

const (
	// NotificationFriendRequest is sent to the addressee of a new friend request.
	NotificationFriendRequest NotificationKind = "friend_request"
	// NotificationFriendRequestAccepted is sent to the requester on acceptance.
	NotificationFriendRequestAccepted NotificationKind = "friend_request_accepted"
	// NotificationProofSubmitted is sent to each eligible verifier of a new proof.
	NotificationProofSubmitted NotificationKind = "proof_submitted"
	// NotificationProofResolved is sent to the proof owner on approval or rejection.
	NotificationProofResolved NotificationKind = "proof_resolved"
	// NotificationMilestoneCompleted is sent to the goal owner when a milestone completes.
	NotificationMilestoneCompleted NotificationKind = "milestone_completed"
	// NotificationIntervalChangeRequested is sent to each eligible verifier of a new request.
	NotificationIntervalChangeRequested NotificationKind = "interval_change_requested"
	// NotificationIntervalChangeResolved is sent to the requester on resolution.
	NotificationIntervalChangeResolved NotificationKind = "interval_change_resolved"
)

// Notification is one persisted partner notification. The core only creates
// these rows and publishes an event; delivery is a collaborator concern.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	ActorID     *uint            `json:"actor_id"`
	Kind        NotificationKind `gorm:"type:varchar(40);not null" json:"kind"`
	GoalID      *uint            `json:"goal_id"`
	ProofID     *uint            `json:"proof_id"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	Read        bool             `gorm:"not null;default:false;index" json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
