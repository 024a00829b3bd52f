// earnio-backend/services/reconcile.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"earnio-backend/models"

	"gorm.io/gorm"
)

// ReconcileOutcome reports what Reconcile did for a reference.
type ReconcileOutcome int

const (
	ReconcileNotFound ReconcileOutcome = iota
	ReconcileAlreadyProcessed
	ReconcileApplied
)

// Reconcile confirms a payment's success and applies its effect exactly
// once. Every entry point — webhook, gateway verify, client shortcut, and
// the background sweeper — funnels through here and must behave identically.
//
// Effects are applied BEFORE the status flip: a crash mid-way leaves the
// transaction pending, so the next invocation repairs the missing work
// instead of seeing "already processed" and skipping it. Each individual
// effect is idempotent (flag update, unique-insert-or-swallow), which is what
// makes the retry safe.
func (s *PaymentService) Reconcile(reference string) (ReconcileOutcome, error) {
	var tx models.Transaction
	if err := s.DB.Where("reference = ?", reference).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReconcileNotFound, nil
		}
		return ReconcileNotFound, err
	}

	if tx.Status == models.TxStatusSuccess {
		return ReconcileAlreadyProcessed, nil
	}

	switch tx.Kind {
	case models.TxKindSignup:
		if err := s.applySignupPayment(tx.UserID); err != nil {
			return ReconcileNotFound, err
		}
	case models.TxKindCoursePurchase:
		if tx.CourseID == nil {
			return ReconcileNotFound, fmt.Errorf("course_purchase transaction %s has no course", reference)
		}
		if err := s.applyCoursePurchase(tx.UserID, *tx.CourseID, tx.AmountUnits, tx.Reference); err != nil {
			return ReconcileNotFound, err
		}
	default:
		// referral_bonus and task_reward rows are born successful; a pending
		// row of those kinds should not exist, but flipping it is harmless.
		log.Printf("[Reconcile] Unexpected pending kind %q for %s", tx.Kind, reference)
	}

	if err := s.DB.Model(&models.Transaction{}).
		Where("reference = ?", reference).
		Update("status", models.TxStatusSuccess).Error; err != nil {
		return ReconcileNotFound, err
	}

	return ReconcileApplied, nil
}

// applySignupPayment marks the payer paid and settles the referral bonus if
// the payer was referred.
func (s *PaymentService) applySignupPayment(userID string) error {
	if err := s.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("is_paid", true).Error; err != nil {
		return err
	}

	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return err
	}
	if user.ReferredBy == nil {
		return nil
	}

	return s.awardReferralBonus(*user.ReferredBy, userID)
}

// awardReferralBonus pays the fixed reward to the referrer, at most once per
// referred user. The Referral row is inserted FIRST: its unique index on
// referred_user_id decides the race, and only the winner goes on to credit
// the wallet and write the bonus transaction. The loser swallows the
// duplicate-key error — someone else already paid this bonus.
func (s *PaymentService) awardReferralBonus(referrerID, referredUserID string) error {
	bonusRef := fmt.Sprintf("REF_BONUS_%s_%d", referredUserID, time.Now().UnixMilli())

	referral := models.Referral{
		ReferrerID:     referrerID,
		ReferredUserID: referredUserID,
		RewardUnits:    ReferralRewardUnits,
		Status:         "paid",
		AwardedTxRef:   bonusRef,
	}

	if err := s.DB.Create(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("[Reconcile] Referral bonus already paid for %s", referredUserID)
			return nil
		}
		return err
	}

	if err := creditWallet(s.DB, referrerID, ReferralRewardUnits); err != nil {
		return err
	}

	bonusTx := models.Transaction{
		Reference:    bonusRef,
		UserID:       referrerID,
		AmountUnits:  ReferralRewardUnits,
		Currency:     Currency,
		Status:       models.TxStatusSuccess,
		Kind:         models.TxKindReferralBonus,
		SourceUserID: &referredUserID,
	}
	if err := s.DB.Create(&bonusTx).Error; err != nil {
		return err
	}

	log.Printf("[Reconcile] Credited %d units to referrer %s for %s", ReferralRewardUnits, referrerID, referredUserID)
	return nil
}

// applyCoursePurchase grants ownership and settles any pending manual-review
// order for the same (user, course).
func (s *PaymentService) applyCoursePurchase(userID string, courseID uint, amountUnits int64, reference string) error {
	if _, err := grantCoursePurchase(s.DB, userID, courseID, amountUnits, reference); err != nil {
		return err
	}

	now := time.Now()
	return s.DB.Model(&models.CourseOrder{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.OrderPending).
		Updates(map[string]interface{}{"status": models.OrderApproved, "approved_at": &now}).Error
}

// creditWallet adds units to a wallet with an atomic in-place increment.
func creditWallet(db *gorm.DB, userID string, units int64) error {
	res := db.Model(&models.Wallet{}).Where("user_id = ?", userID).
		Update("balance_units", gorm.Expr("balance_units + ?", units))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("wallet not found for user %s", userID)
	}
	return nil
}

// grantCoursePurchase inserts the ownership row. "Already purchased" is
// success, not an error — the unique (user_id, course_id) index is what all
// grant paths converge on.
func grantCoursePurchase(db *gorm.DB, userID string, courseID uint, amountUnits int64, reference string) (bool, error) {
	purchase := models.CoursePurchase{
		UserID:         userID,
		CourseID:       courseID,
		AmountUnits:    amountUnits,
		TransactionRef: reference,
	}
	if err := db.Create(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
