// earnio-backend/services/auth_service.go
package services

import (
	"errors"
	"log"
	"strings"

	"earnio-backend/models"
	"earnio-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("email already registered")

type AuthService struct {
	DB *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

// Register creates the user plus its wallet. The first user ever becomes
// admin and skips the signup fee. If the wallet insert fails the user row is
// deleted again (compensating action — account creation and wallet creation
// are separate statements, not one transaction).
func (s *AuthService) Register(email, password, referralCode string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	// Resolve referrer before creating anything; an unknown code is simply
	// ignored, matching the signup form's lenient behavior.
	var referredBy *string
	if referralCode != "" {
		var referrer models.User
		if err := s.DB.Where("referral_code = ?", referralCode).First(&referrer).Error; err == nil {
			referredBy = &referrer.ID
		}
	}

	var count int64
	if err := s.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, err
	}
	isFirst := count == 0

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		ReferralCode: generateReferralCode(),
		ReferredBy:   referredBy,
		IsAdmin:      isFirst,
		IsPaid:       isFirst, // admin skips the signup fee
	}

	if err := s.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if err := s.DB.Create(&models.Wallet{UserID: user.ID}).Error; err != nil {
		log.Printf("[Signup] Wallet creation failed for %s, rolling back user: %v", user.ID, err)
		s.DB.Unscoped().Delete(&models.User{}, "id = ?", user.ID)
		return nil, err
	}

	return &user, nil
}

// generateReferralCode mints a short human-readable code. Uniqueness is
// enforced by the index on users.referral_code; a collision on these 6 hex
// chars is rare enough that signup simply fails and the user retries.
func generateReferralCode() string {
	return "USER" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

// Signup handles POST /auth/signup
func (s *AuthService) Signup(c *fiber.Ctx) error {
	var input models.SignupInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email and password required"})
	}
	if len(input.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Password must be at least 6 characters"})
	}

	user, err := s.Register(input.Email, input.Password, input.ReferralCode)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email already registered"})
		}
		log.Printf("[Signup] %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Signup failed"})
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "User created but login failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":        token,
		"needsPayment": !user.IsPaid,
		"user": fiber.Map{
			"id":           user.ID,
			"email":        user.Email,
			"referralCode": user.ReferralCode,
		},
	})
}

// Login handles POST /auth/login
func (s *AuthService) Login(c *fiber.Ctx) error {
	var input models.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	var user models.User
	if err := s.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid credentials"})
	}

	if !utils.CheckPassword(input.Password, user.PasswordHash) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid credentials"})
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Login failed"})
	}

	return c.JSON(fiber.Map{
		"token":        token,
		"needsPayment": !user.IsPaid,
	})
}

// UpdatePassword handles POST /auth/update-password
func (s *AuthService) UpdatePassword(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var input struct {
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&input); err != nil || len(input.NewPassword) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Password must be at least 6 characters"})
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Password update failed"})
	}

	if err := s.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", hash).Error; err != nil {
		log.Printf("[Auth] Password update failed for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Password update failed"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Password updated successfully"})
}
