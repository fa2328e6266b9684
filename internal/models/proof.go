package models

import "time"

// ApprovalStatus is the shared lifecycle of everything that flows through the
// approval state machine. Approved and rejected are terminal.
type ApprovalStatus string

const (
	// ApprovalStatusPending indicates the submission is awaiting votes.
	ApprovalStatusPending ApprovalStatus = "pending"
	// ApprovalStatusApproved indicates the required approvals were reached.
	ApprovalStatusApproved ApprovalStatus = "approved"
	// ApprovalStatusRejected indicates a verifier vetoed the submission.
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// Terminal reports whether the status permits no further transitions.
func (s ApprovalStatus) Terminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// Proof is one evidence submission for a goal, optionally tied to a
// milestone. RequiredVerifications is a snapshot of the eligible-voter count
// taken at creation; it is never recomputed, even if the friend graph changes
// while the proof is pending.
type Proof struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	GoalID                uint           `gorm:"not null;index" json:"goal_id"`
	MilestoneID           *uint          `gorm:"index" json:"milestone_id"`
	OwnerID               uint           `gorm:"not null;index" json:"owner_id"`
	StorageKey            string         `gorm:"size:512;not null" json:"storage_key"`
	Caption               string         `gorm:"type:text" json:"caption"`
	Status                ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RequiredVerifications int            `gorm:"not null" json:"required_verifications"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`

	// Relationships
	Owner     User        `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Milestone *Milestone  `gorm:"foreignKey:MilestoneID" json:"milestone,omitempty"`
	Votes     []ProofVote `gorm:"foreignKey:ProofID" json:"votes,omitempty"`
}

// TableName specifies the table name for GORM.
func (Proof) TableName() string {
	return "proofs"
}

// ProofVote is one verifier's vote on a proof. Immutable once written;
// unique per (proof, voter).
type ProofVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProofID   uint      `gorm:"not null;uniqueIndex:idx_proof_votes_voter" json:"proof_id"`
	VoterID   uint      `gorm:"not null;uniqueIndex:idx_proof_votes_voter" json:"voter_id"`
	Approved  bool      `gorm:"not null" json:"approved"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	Voter User `gorm:"foreignKey:VoterID" json:"voter,omitempty"`
}

// TableName specifies the table name for GORM.
func (ProofVote) TableName() string {
	return "proof_votes"
}
