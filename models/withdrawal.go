package models

import "time"

// Withdrawal statuses
const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
)

// Withdrawal is a payout request. The wallet debit happens before this row
// is inserted; if the insert fails the debit is reversed (compensating
// action, not a DB transaction).
type Withdrawal struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      string     `gorm:"type:uuid;index;not null" json:"user_id"`
	AmountUnits int64      `gorm:"not null" json:"amount_units"`
	Phone       string     `gorm:"size:20;not null" json:"phone"`
	Status      string     `gorm:"size:20;index;default:'pending'" json:"status"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
