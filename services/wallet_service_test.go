package services

import (
	"errors"
	"testing"

	"earnio-backend/models"
)

func TestWithdrawBelowMinimum(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)

	user := createTestUser(t, db, "user@example.com", nil)
	setBalance(t, db, user.ID, 20000)

	err := svc.Withdraw(user.ID, MinWithdrawUnits-1, "0712345678")
	if !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}

	if got := walletBalance(t, db, user.ID); got != 20000 {
		t.Errorf("balance = %d, want 20000 (nothing deducted)", got)
	}
}

func TestWithdrawOverBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)

	user := createTestUser(t, db, "user@example.com", nil)
	setBalance(t, db, user.ID, MinWithdrawUnits) // exactly the minimum

	err := svc.Withdraw(user.ID, MinWithdrawUnits+100, "0712345678")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if got := walletBalance(t, db, user.ID); got != MinWithdrawUnits {
		t.Errorf("balance = %d, want %d (nothing deducted)", got, MinWithdrawUnits)
	}

	var count int64
	db.Model(&models.Withdrawal{}).Count(&count)
	if count != 0 {
		t.Errorf("withdrawal rows = %d, want 0", count)
	}
}

func TestWithdrawExactBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)

	user := createTestUser(t, db, "user@example.com", nil)
	setBalance(t, db, user.ID, MinWithdrawUnits)

	if err := svc.Withdraw(user.ID, MinWithdrawUnits, "0712345678"); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	if got := walletBalance(t, db, user.ID); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}

	var withdrawal models.Withdrawal
	if err := db.Where("user_id = ?", user.ID).First(&withdrawal).Error; err != nil {
		t.Fatalf("withdrawal row not found: %v", err)
	}
	if withdrawal.Status != models.WithdrawalPending {
		t.Errorf("withdrawal status = %q, want pending", withdrawal.Status)
	}
	if withdrawal.AmountUnits != MinWithdrawUnits {
		t.Errorf("withdrawal amount = %d, want %d", withdrawal.AmountUnits, MinWithdrawUnits)
	}
}

func TestWithdrawDeductsImmediately(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)

	user := createTestUser(t, db, "user@example.com", nil)
	setBalance(t, db, user.ID, 50000)

	if err := svc.Withdraw(user.ID, 20000, "0712345678"); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	// Reserved at request time, not at approval
	if got := walletBalance(t, db, user.ID); got != 30000 {
		t.Errorf("balance = %d, want 30000", got)
	}
}
