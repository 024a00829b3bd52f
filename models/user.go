package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the member profile plus its credentials. The first user ever
// created becomes admin and skips the signup fee.
type User struct {
	ID           string  `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string  `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	ReferralCode string  `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	ReferredBy   *string `gorm:"type:uuid;index" json:"referred_by,omitempty"`
	IsPaid       bool    `gorm:"default:false" json:"is_paid"`
	IsAdmin      bool    `gorm:"default:false" json:"is_admin"`

	Timestamps
}

type SignupInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referralCode"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
