package models

import "time"

// Wallet holds earnings in the smallest currency unit (1 KES = 100 units).
// Balances stay integer end to end to avoid floating-point drift; handlers
// divide by UnitsPerKES only when rendering.
type Wallet struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	BalanceUnits int64     `gorm:"default:0" json:"balance_units"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Transaction statuses
const (
	TxStatusPending = "pending"
	TxStatusSuccess = "success"
)

// Transaction kinds — what the payment (or credit) was for
const (
	TxKindSignup         = "signup"
	TxKindCoursePurchase = "course_purchase"
	TxKindReferralBonus  = "referral_bonus"
	TxKindTaskReward     = "task_reward"
)

// Transaction is an append-mostly ledger row keyed by a globally unique
// reference string echoed back by the payment gateway. The pending→success
// flip happens exactly once; reconciliation treats a success row as a stop
// signal.
type Transaction struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Reference   string `gorm:"uniqueIndex;size:100;not null" json:"reference"`
	UserID      string `gorm:"type:uuid;index;not null" json:"user_id"`
	AmountUnits int64  `gorm:"not null" json:"amount_units"`
	Currency    string `gorm:"size:3;default:'KES'" json:"currency"`
	Status      string `gorm:"size:20;index;not null" json:"status"`

	// Typed purpose columns instead of free-form metadata
	Kind         string  `gorm:"size:30;index;not null" json:"kind"`
	CourseID     *uint   `json:"course_id,omitempty"`
	TaskID       *uint   `json:"task_id,omitempty"`
	SourceUserID *string `gorm:"type:uuid" json:"source_user_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
