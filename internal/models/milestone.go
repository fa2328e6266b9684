package models

import "time"

// Milestone is one periodic checkpoint of a goal. Completed and failed are
// terminal; an open milestone has both unset.
type Milestone struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	GoalID      uint       `gorm:"not null;index" json:"goal_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	OrderIndex  int        `gorm:"not null" json:"order_index"`
	DueDate     *time.Time `gorm:"index" json:"due_date"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	Failed      bool       `gorm:"not null;default:false" json:"failed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Milestone) TableName() string {
	return "milestones"
}

// Open reports whether the milestone has not yet reached a terminal state.
func (m *Milestone) Open() bool {
	return !m.Completed && !m.Failed
}
