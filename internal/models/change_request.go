package models

import "time"

// IntervalChangeRequest asks the goal's accountability partners to approve a
// new milestone interval. It shares the proof's approval lifecycle; only the
// post-resolution side effect differs. CurrentInterval records the goal's
// interval at request creation and guards the approved write against
// concurrent unrelated updates.
// Invariant: at most one pending request per goal.
type IntervalChangeRequest struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	GoalID                uint           `gorm:"not null;index" json:"goal_id"`
	RequesterID           uint           `gorm:"not null;index" json:"requester_id"`
	CurrentInterval       int            `gorm:"not null" json:"current_interval"`
	RequestedInterval     int            `gorm:"not null" json:"requested_interval"`
	Status                ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RequiredVerifications int            `gorm:"not null" json:"required_verifications"`
	ResolvedAt            *time.Time     `json:"resolved_at"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`

	// Relationships
	Requester User                 `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Goal      Goal                 `gorm:"foreignKey:GoalID" json:"goal,omitempty"`
	Votes     []IntervalChangeVote `gorm:"foreignKey:RequestID" json:"votes,omitempty"`
}

// TableName specifies the table name for GORM.
func (IntervalChangeRequest) TableName() string {
	return "interval_change_requests"
}

// IntervalChangeVote is one verifier's vote on an interval change request.
// Immutable once written; unique per (request, voter).
type IntervalChangeVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RequestID uint      `gorm:"not null;uniqueIndex:idx_interval_votes_voter" json:"request_id"`
	VoterID   uint      `gorm:"not null;uniqueIndex:idx_interval_votes_voter" json:"voter_id"`
	Approved  bool      `gorm:"not null" json:"approved"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	Voter User `gorm:"foreignKey:VoterID" json:"voter,omitempty"`
}

// TableName specifies the table name for GORM.
func (IntervalChangeVote) TableName() string {
	return "interval_change_votes"
}
