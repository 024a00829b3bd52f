package models

import "time"

// Referral records a paid-out referral bonus. The unique index on
// referred_user_id is the only guard against crediting a referrer twice —
// whoever loses the insert race must treat the duplicate-key error as
// "bonus already paid", never as a failure.
type Referral struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ReferrerID     string `gorm:"type:uuid;index;not null;uniqueIndex:idx_referrer_referred" json:"referrer_id"`
	ReferredUserID string `gorm:"type:uuid;uniqueIndex;not null;uniqueIndex:idx_referrer_referred" json:"referred_user_id"`
	RewardUnits    int64  `gorm:"not null" json:"reward_units"`
	Status         string `gorm:"size:20;default:'paid'" json:"status"`
	AwardedTxRef   string `gorm:"size:100" json:"awarded_tx_ref"`

	CreatedAt time.Time `json:"created_at"`
}
