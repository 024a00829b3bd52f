package services

import (
	"errors"
	"testing"

	"earnio-backend/models"
)

func TestRegisterFirstUserIsAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	first, err := svc.Register("founder@example.com", "secret123", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !first.IsAdmin || !first.IsPaid {
		t.Errorf("first user admin=%v paid=%v, want both true", first.IsAdmin, first.IsPaid)
	}

	second, err := svc.Register("member@example.com", "secret123", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if second.IsAdmin || second.IsPaid {
		t.Errorf("second user admin=%v paid=%v, want both false", second.IsAdmin, second.IsPaid)
	}
}

func TestRegisterCreatesWallet(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	user, err := svc.Register("member@example.com", "secret123", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	var wallet models.Wallet
	if err := db.Where("user_id = ?", user.ID).First(&wallet).Error; err != nil {
		t.Fatalf("wallet not created: %v", err)
	}
	if wallet.BalanceUnits != 0 {
		t.Errorf("new wallet balance = %d, want 0", wallet.BalanceUnits)
	}
}

func TestRegisterLinksReferrer(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	referrer, err := svc.Register("referrer@example.com", "secret123", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	referred, err := svc.Register("referred@example.com", "secret123", referrer.ReferralCode)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if referred.ReferredBy == nil || *referred.ReferredBy != referrer.ID {
		t.Error("referred_by not linked to referrer")
	}
}

func TestRegisterIgnoresUnknownReferralCode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	user, err := svc.Register("member@example.com", "secret123", "NOSUCHCODE")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ReferredBy != nil {
		t.Error("unknown referral code should be ignored, not stored")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	if _, err := svc.Register("member@example.com", "secret123", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.Register("member@example.com", "other456", "")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}
