// earnio-backend/services/wallet_service.go
package services

import (
	"errors"
	"log"
	"time"

	"earnio-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	ErrBelowMinimum        = errors.New("amount below minimum withdrawal")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

type WalletService struct {
	DB *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{DB: db}
}

// Withdraw debits the wallet and files the payout request. The balance
// pre-check enforces non-negativity; the debit runs as a conditional atomic
// decrement so two concurrent requests cannot both drain the same balance.
// If the withdrawal insert fails after the debit, the debit is reversed —
// a compensating credit, not a rollback.
func (s *WalletService) Withdraw(userID string, amountUnits int64, phone string) error {
	if amountUnits < MinWithdrawUnits {
		return ErrBelowMinimum
	}

	res := s.DB.Model(&models.Wallet{}).
		Where("user_id = ? AND balance_units >= ?", userID, amountUnits).
		Update("balance_units", gorm.Expr("balance_units - ?", amountUnits))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}

	withdrawal := models.Withdrawal{
		UserID:      userID,
		AmountUnits: amountUnits,
		Phone:       phone,
		Status:      models.WithdrawalPending,
	}
	if err := s.DB.Create(&withdrawal).Error; err != nil {
		log.Printf("[Withdraw] Insert failed for %s, refunding %d units: %v", userID, amountUnits, err)
		if refundErr := creditWallet(s.DB, userID, amountUnits); refundErr != nil {
			log.Printf("[Withdraw] Refund also failed for %s: %v", userID, refundErr)
		}
		return err
	}

	return nil
}

// RequestWithdrawal handles POST /withdraw
func (s *WalletService) RequestWithdrawal(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var input struct {
		Amount int64  `json:"amount"` // display units (KES)
		Phone  string `json:"phone"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	err := s.Withdraw(userID, input.Amount*UnitsPerKES, input.Phone)
	switch {
	case errors.Is(err, ErrBelowMinimum):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Minimum 150 KES"})
	case errors.Is(err, ErrInsufficientBalance):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Insufficient balance"})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Withdrawal failed"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// DashboardData handles GET /dashboard/data — the member home screen:
// profile flags, balance, referrals, and earnings still locked in pending
// task submissions.
func (s *WalletService) DashboardData(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	var wallet models.Wallet
	if err := s.DB.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		// Wallet rows are created at signup; tolerate older accounts.
		wallet = models.Wallet{UserID: userID}
	}

	var referrals []models.Referral
	s.DB.Where("referrer_id = ?", userID).Find(&referrals)

	var pendingKES int64
	s.DB.Model(&models.TaskSubmission{}).
		Select("COALESCE(SUM(tasks.reward_kes), 0)").
		Joins("JOIN tasks ON tasks.id = task_submissions.task_id").
		Where("task_submissions.user_id = ? AND task_submissions.status = ?", userID, models.SubmissionPending).
		Scan(&pendingKES)

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"email":        user.Email,
			"referralCode": user.ReferralCode,
			"isPaid":       user.IsPaid,
			"isAdmin":      user.IsAdmin,
		},
		"wallet": fiber.Map{
			"balanceKES":      float64(wallet.BalanceUnits) / UnitsPerKES,
			"pendingCombined": pendingKES,
		},
		"referrals": referrals,
	})
}

// WithdrawalAction handles POST /admin/withdrawals/:id/action — approve or
// reject a payout request. Rejection refunds the debited amount.
func (s *WalletService) WithdrawalAction(c *fiber.Ctx) error {
	id := c.Params("id")

	var input struct {
		Action string `json:"action"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if input.Action != "approve" && input.Action != "reject" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid action"})
	}

	var withdrawal models.Withdrawal
	if err := s.DB.First(&withdrawal, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Withdrawal not found"})
	}

	if withdrawal.Status != models.WithdrawalPending {
		return c.JSON(fiber.Map{"success": true, "message": "Already processed"})
	}

	status := models.WithdrawalApproved
	if input.Action == "reject" {
		status = models.WithdrawalRejected
	}

	now := time.Now()
	if err := s.DB.Model(&withdrawal).
		Updates(map[string]interface{}{"status": status, "processed_at": &now}).Error; err != nil {
		log.Printf("[Withdraw] Action failed for %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to process withdrawal"})
	}

	if status == models.WithdrawalRejected {
		if err := creditWallet(s.DB, withdrawal.UserID, withdrawal.AmountUnits); err != nil {
			log.Printf("[Withdraw] Refund after rejection failed for %s: %v", withdrawal.UserID, err)
		}
	}

	return c.JSON(fiber.Map{"success": true})
}
