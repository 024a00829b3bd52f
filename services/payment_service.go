// earnio-backend/services/payment_service.go
package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"earnio-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PaymentService struct {
	DB        *gorm.DB
	Paystack  *PaystackClient
	PublicKey string
	// WebhookSecret signs gateway callbacks; it is the same secret key the
	// verify API is called with.
	WebhookSecret string
}

func NewPaymentService(db *gorm.DB, paystack *PaystackClient, publicKey, secretKey string) *PaymentService {
	return &PaymentService{
		DB:            db,
		Paystack:      paystack,
		PublicKey:     publicKey,
		WebhookSecret: secretKey,
	}
}

// InitiatePayment handles POST /pay/initiate — creates the pending signup-fee
// transaction and hands the client what it needs for hosted checkout.
func (s *PaymentService) InitiatePayment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	reference := fmt.Sprintf("REF_%d_%s", time.Now().UnixMilli(), userID)

	tx := models.Transaction{
		Reference:   reference,
		UserID:      userID,
		AmountUnits: SignupFeeUnits,
		Currency:    Currency,
		Status:      models.TxStatusPending,
		Kind:        models.TxKindSignup,
	}
	if err := s.DB.Create(&tx).Error; err != nil {
		log.Printf("[Pay] Transaction creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Transaction creation failed"})
	}

	return c.JSON(fiber.Map{
		"reference": reference,
		"amount":    SignupFeeUnits,
		"key":       s.PublicKey,
	})
}

// MarkPaid handles POST /pay/mark-paid — the low-trust shortcut: the client
// asserts its signup payment went through and we apply the signup effects
// without consulting the gateway. Kept as a distinct path; the idempotency
// guards are the same ones the trusted paths rely on.
func (s *PaymentService) MarkPaid(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	log.Printf("[MARK-PAID] Attempting to mark user %s as paid", userID)

	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update"})
	}

	if user.IsPaid {
		return c.JSON(fiber.Map{"success": true, "userId": userID, "message": "Already paid"})
	}

	if err := s.applySignupPayment(userID); err != nil {
		log.Printf("[MARK-PAID] %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Update failed"})
	}

	return c.JSON(fiber.Map{"success": true, "userId": userID})
}

// VerifyPayment handles GET /verify/:reference — polls the gateway and
// reconciles on confirmed success.
func (s *PaymentService) VerifyPayment(c *fiber.Ctx) error {
	reference := c.Params("reference")
	if reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"verified": false, "message": "No reference"})
	}

	data, err := s.Paystack.Verify(c.Context(), reference)
	if err != nil {
		log.Printf("[Verify] %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"verified": false, "message": "Verification error"})
	}

	if data.Status != "success" {
		return c.JSON(fiber.Map{"verified": false, "message": "Payment not successful"})
	}

	if _, err := s.Reconcile(reference); err != nil {
		log.Printf("[Verify] Reconcile failed for %s: %v", reference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"verified": false, "message": "Verification error"})
	}

	return c.JSON(fiber.Map{"verified": true, "data": data})
}

type webhookEvent struct {
	Event string     `json:"event"`
	Data  VerifyData `json:"data"`
}

// HandleWebhook handles POST /webhooks/paystack — the gateway-pushed
// confirmation. The raw body is authenticated with HMAC-SHA512 before
// anything is parsed; a bad signature gets a bodyless 401.
func (s *PaymentService) HandleWebhook(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get("x-paystack-signature")

	if !validSignature(body, signature, s.WebhookSecret) {
		log.Println("[Webhook] Invalid Paystack signature")
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	log.Printf("[Webhook] Paystack event received: %s", event.Event)

	if event.Event == "charge.success" {
		outcome, err := s.Reconcile(event.Data.Reference)
		if err != nil {
			log.Printf("[Webhook] Reconcile failed for %s: %v", event.Data.Reference, err)
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		if outcome == ReconcileNotFound {
			log.Printf("[Webhook] Transaction not found for reference: %s", event.Data.Reference)
		}
	}

	// Always 200 for authenticated events so the gateway stops retrying.
	return c.SendString("OK")
}

// validSignature compares the HMAC-SHA512 of the raw body against the header
// value (hex, case-sensitive).
func validSignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyCoursePayment handles POST /courses/verify-payment — the polling
// entry point for course checkouts.
func (s *PaymentService) VerifyCoursePayment(c *fiber.Ctx) error {
	var input struct {
		Reference string `json:"reference"`
	}
	if err := c.BodyParser(&input); err != nil || input.Reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Reference required"})
	}

	data, err := s.Paystack.Verify(c.Context(), input.Reference)
	if err != nil {
		log.Printf("[CourseVerify] %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Verification error"})
	}

	if data.Status != "success" {
		return c.JSON(fiber.Map{"success": false, "message": "Payment verification failed"})
	}

	var tx models.Transaction
	if err := s.DB.Where("reference = ?", input.Reference).First(&tx).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Transaction not found"})
	}
	if tx.Kind != models.TxKindCoursePurchase {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid transaction type"})
	}

	if _, err := s.Reconcile(input.Reference); err != nil {
		log.Printf("[CourseVerify] Reconcile failed for %s: %v", input.Reference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to grant access"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Course purchased successfully!",
		"courseId": tx.CourseID,
	})
}

// sweepPendingPayments re-verifies recent pending transactions against the
// gateway. It repairs payments whose webhook never arrived; Reconcile's
// idempotency boundary makes racing the webhook harmless.
func (s *PaymentService) sweepPendingPayments(ctx context.Context) {
	var pending []models.Transaction
	cutoff := time.Now().Add(-24 * time.Hour)
	err := s.DB.Where("status = ? AND kind IN ? AND created_at > ?",
		models.TxStatusPending,
		[]string{models.TxKindSignup, models.TxKindCoursePurchase},
		cutoff,
	).Limit(50).Find(&pending).Error
	if err != nil {
		log.Printf("[Sweeper] DB error: %v", err)
		return
	}

	for _, tx := range pending {
		data, err := s.Paystack.Verify(ctx, tx.Reference)
		if err != nil {
			continue
		}
		if data.Status != "success" {
			continue
		}
		if outcome, err := s.Reconcile(tx.Reference); err != nil {
			log.Printf("[Sweeper] Reconcile failed for %s: %v", tx.Reference, err)
		} else if outcome == ReconcileApplied {
			log.Printf("[Sweeper] Settled missed payment %s", tx.Reference)
		}
	}
}
