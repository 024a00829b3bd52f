package models

import "time"

// Submission statuses
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// Task is an admin-defined micro-task. RewardKES is stored in display units
// (shillings); approval credits the wallet RewardKES × UnitsPerKES.
type Task struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `json:"description"`
	RewardKES   int64  `gorm:"not null" json:"reward_kes"`
	TaskType    string `gorm:"size:50;default:'general'" json:"task_type"`
	URL         string `json:"url,omitempty"`
	DailyLimit  int    `gorm:"default:1" json:"daily_limit"`
	IsActive    bool   `gorm:"default:true;index" json:"is_active"`

	Timestamps
}

// TaskSubmission is one proof-of-completion awaiting admin review.
// The daily limit counts non-rejected submissions for (user, task) since
// the start of the current day.
type TaskSubmission struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     string     `gorm:"type:uuid;index;not null" json:"user_id"`
	TaskID     uint       `gorm:"index;not null" json:"task_id"`
	Status     string     `gorm:"size:20;index;default:'pending'" json:"status"`
	ProofData  string     `json:"proof_data,omitempty"`
	ReviewedBy *string    `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
