// earnio-backend/services/admin_service.go
package services

import (
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	"earnio-backend/models"
	"earnio-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminService struct {
	DB *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{DB: db}
}

// AdminData handles GET /admin/data — the review dashboard payload: every
// user with wallet balance, plus the withdrawal queue.
func (s *AdminService) AdminData(c *fiber.Ctx) error {
	var users []models.User
	if err := s.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch users"})
	}

	userRows := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		var wallet models.Wallet
		s.DB.Where("user_id = ?", u.ID).First(&wallet)
		userRows = append(userRows, fiber.Map{
			"id":            u.ID,
			"email":         u.Email,
			"referral_code": u.ReferralCode,
			"referred_by":   u.ReferredBy,
			"is_paid":       u.IsPaid,
			"is_admin":      u.IsAdmin,
			"created_at":    u.CreatedAt,
			"balanceKES":    float64(wallet.BalanceUnits) / UnitsPerKES,
		})
	}

	var withdrawals []models.Withdrawal
	if err := s.DB.Order("created_at DESC").Find(&withdrawals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch withdrawals"})
	}

	withdrawalRows := make([]fiber.Map, 0, len(withdrawals))
	for _, w := range withdrawals {
		var email string
		s.DB.Model(&models.User{}).Where("id = ?", w.UserID).Pluck("email", &email)
		withdrawalRows = append(withdrawalRows, fiber.Map{
			"id":           w.ID,
			"user_id":      w.UserID,
			"email":        email,
			"amountKES":    float64(w.AmountUnits) / UnitsPerKES,
			"phone":        w.Phone,
			"status":       w.Status,
			"created_at":   w.CreatedAt,
			"processed_at": w.ProcessedAt,
		})
	}

	return c.JSON(fiber.Map{
		"users":       userRows,
		"withdrawals": withdrawalRows,
	})
}

// AdminStats handles GET /admin/stats
func (s *AdminService) AdminStats(c *fiber.Ctx) error {
	var totalUsers, paidUsers, pendingWithdrawals, pendingSubmissions, pendingOrders int64
	s.DB.Model(&models.User{}).Count(&totalUsers)
	s.DB.Model(&models.User{}).Where("is_paid = ?", true).Count(&paidUsers)
	s.DB.Model(&models.Withdrawal{}).Where("status = ?", models.WithdrawalPending).Count(&pendingWithdrawals)
	s.DB.Model(&models.TaskSubmission{}).Where("status = ?", models.SubmissionPending).Count(&pendingSubmissions)
	s.DB.Model(&models.CourseOrder{}).Where("status = ?", models.OrderPending).Count(&pendingOrders)

	var revenueUnits int64
	s.DB.Model(&models.Transaction{}).
		Where("status = ? AND kind IN ?", models.TxStatusSuccess,
			[]string{models.TxKindSignup, models.TxKindCoursePurchase}).
		Select("COALESCE(SUM(amount_units), 0)").Scan(&revenueUnits)

	return c.JSON(fiber.Map{
		"totalUsers":          totalUsers,
		"paidUsers":           paidUsers,
		"pendingWithdrawals":  pendingWithdrawals,
		"pendingSubmissions":  pendingSubmissions,
		"pendingCourseOrders": pendingOrders,
		"totalRevenueKES":     float64(revenueUnits) / UnitsPerKES,
	})
}

// UploadImage handles POST /admin/upload-image — accepts a base64 payload
// (with or without the data URI prefix) and stores it in the bucket.
func (s *AdminService) UploadImage(c *fiber.Ctx) error {
	var input struct {
		Image    string `json:"image"`
		FileName string `json:"fileName"`
		Folder   string `json:"folder"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if input.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "image is required"})
	}

	contentType := "image/png"
	payload := input.Image
	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ";base64,", 2)
		if len(parts) != 2 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Malformed data URI"})
		}
		contentType = strings.TrimPrefix(parts[0], "data:")
		payload = parts[1]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid base64 payload"})
	}

	folder := input.Folder
	if folder == "" {
		folder = "thumbnails"
	}
	fileName := input.FileName
	if fileName == "" {
		fileName = "upload.png"
	}
	key := fmt.Sprintf("%s/%d_%s", folder, time.Now().UnixMilli(), fileName)

	url, err := utils.UploadBytes(key, contentType, data)
	if err != nil {
		log.Printf("[Admin] Image upload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Upload failed"})
	}

	return c.JSON(fiber.Map{"url": url})
}
