package models

import "time"

// CoursePurchase grants course access. Ownership IS the presence of this
// row; the unique (user_id, course_id) index makes every grant path —
// webhook, verify, unlock, order approval, admin grant — converge on
// at-most-one purchase.
type CoursePurchase struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         string `gorm:"type:uuid;not null;uniqueIndex:idx_user_course" json:"user_id"`
	CourseID       uint   `gorm:"not null;uniqueIndex:idx_user_course" json:"course_id"`
	AmountUnits    int64  `json:"amount_units"`
	TransactionRef string `gorm:"size:100" json:"transaction_ref"`

	PurchasedAt time.Time `gorm:"autoCreateTime" json:"purchased_at"`

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// Order statuses
const (
	OrderPending  = "pending"
	OrderApproved = "approved"
	OrderRejected = "rejected"
)

// CourseOrder is a manual-review record created when a client reports a
// payment before (or without) webhook confirmation. Approval must also
// create the CoursePurchase if it is still missing.
type CourseOrder struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         string     `gorm:"type:uuid;index;not null" json:"user_id"`
	CourseID       uint       `gorm:"index;not null" json:"course_id"`
	AmountUnits    int64      `json:"amount_units"`
	TransactionRef string     `gorm:"size:100" json:"transaction_ref"`
	Status         string     `gorm:"size:20;index;default:'pending'" json:"status"`
	ApprovedBy     *string    `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}
