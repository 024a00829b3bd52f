package services

import (
	"fmt"
	"testing"

	"earnio-backend/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database per test. TranslateError must
// be on, the duplicate-key handling in the services depends on it.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Referral{},
		&models.Withdrawal{},
		&models.Task{},
		&models.TaskSubmission{},
		&models.Course{},
		&models.Chapter{},
		&models.Lesson{},
		&models.CourseResource{},
		&models.CoursePurchase{},
		&models.CourseOrder{},
		&models.LessonProgress{},
		&models.ChapterProgress{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// createTestUser inserts a user with an empty wallet.
func createTestUser(t *testing.T, db *gorm.DB, email string, referredBy *string) models.User {
	t.Helper()

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "x",
		ReferralCode: generateReferralCode(),
		ReferredBy:   referredBy,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	if err := db.Create(&models.Wallet{UserID: user.ID}).Error; err != nil {
		t.Fatalf("failed to create wallet for %s: %v", email, err)
	}
	return user
}

func walletBalance(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()

	var wallet models.Wallet
	if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		t.Fatalf("failed to load wallet for %s: %v", userID, err)
	}
	return wallet.BalanceUnits
}

func setBalance(t *testing.T, db *gorm.DB, userID string, units int64) {
	t.Helper()

	if err := db.Model(&models.Wallet{}).Where("user_id = ?", userID).
		Update("balance_units", units).Error; err != nil {
		t.Fatalf("failed to set balance for %s: %v", userID, err)
	}
}
