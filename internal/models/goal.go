package models

import "time"

// GoalPrivacy controls who may view a goal and verify its evidence.
type GoalPrivacy string

const (
	// GoalPrivacyPrivate restricts the goal to its owner. Private goals have
	// no accountability partners and cannot originate verifiable submissions.
	GoalPrivacyPrivate GoalPrivacy = "private"
	// GoalPrivacyFriends opens the goal to every accepted friend of the owner.
	GoalPrivacyFriends GoalPrivacy = "friends"
	// GoalPrivacySelectFriends opens the goal to an explicit viewer list.
	GoalPrivacySelectFriends GoalPrivacy = "select_friends"
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	// GoalStatusActive indicates the goal is in progress.
	GoalStatusActive GoalStatus = "active"
	// GoalStatusCompleted indicates every milestone resolved successfully.
	GoalStatusCompleted GoalStatus = "completed"
	// GoalStatusFailed indicates the owner gave up or the deadline passed.
	GoalStatusFailed GoalStatus = "failed"
	// GoalStatusArchived indicates the goal is hidden from active views.
	GoalStatusArchived GoalStatus = "archived"
)

// Goal is a user goal with periodic milestones and a privacy setting.
type Goal struct {
	ID                    uint        `gorm:"primaryKey" json:"id"`
	OwnerID               uint        `gorm:"not null;index" json:"owner_id"`
	Title                 string      `gorm:"size:255;not null" json:"title"`
	Description           string      `gorm:"type:text" json:"description"`
	Privacy               GoalPrivacy `gorm:"type:varchar(20);not null;default:'private'" json:"privacy"`
	MilestoneIntervalDays int         `gorm:"not null;default:0" json:"milestone_interval_days"`
	StartDate             time.Time   `gorm:"not null" json:"start_date"`
	Deadline              time.Time   `gorm:"not null" json:"deadline"`
	Status                GoalStatus  `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`

	// Relationships
	Owner          User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Milestones     []Milestone     `gorm:"foreignKey:GoalID" json:"milestones,omitempty"`
	AllowedViewers []AllowedViewer `gorm:"foreignKey:GoalID" json:"allowed_viewers,omitempty"`
}

// TableName specifies the table name for GORM.
func (Goal) TableName() string {
	return "goals"
}

// AllowedViewer is an explicit per-goal grant used when privacy is
// select_friends. The grantee must be an accepted friend of the goal owner.
type AllowedViewer struct {
	GoalID    uint      `gorm:"primaryKey;autoIncrement:false" json:"goal_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CanVerify bool      `gorm:"not null;default:true" json:"can_verify"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM.
func (AllowedViewer) TableName() string {
	return "goal_allowed_viewers"
}
