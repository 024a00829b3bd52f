package services

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"earnio-backend/models"

	"github.com/gofiber/fiber/v2"
)

func signBody(secret, body string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookSignature(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db, nil, "pk_test", "sk_test_secret")

	app := fiber.New()
	app.Post("/webhook/paystack", svc.HandleWebhook)

	user := createTestUser(t, db, "payer@example.com", nil)
	ref := pendingSignupTx(t, svc, user.ID)

	body := fmt.Sprintf(`{"event":"charge.success","data":{"reference":"%s","status":"success"}}`, ref)

	t.Run("bad signature rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/webhook/paystack", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-paystack-signature", "deadbeef")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}

		var tx models.Transaction
		db.Where("reference = ?", ref).First(&tx)
		if tx.Status != models.TxStatusPending {
			t.Errorf("forged webhook mutated transaction: status = %q", tx.Status)
		}
	})

	t.Run("missing signature rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/webhook/paystack", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("valid signature applies payment", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/webhook/paystack", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-paystack-signature", signBody("sk_test_secret", body))

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}

		var tx models.Transaction
		db.Where("reference = ?", ref).First(&tx)
		if tx.Status != models.TxStatusSuccess {
			t.Errorf("transaction status = %q, want success", tx.Status)
		}

		var user2 models.User
		db.First(&user2, "id = ?", user.ID)
		if !user2.IsPaid {
			t.Error("user not marked paid after valid webhook")
		}
	})

	t.Run("irrelevant event acknowledged", func(t *testing.T) {
		other := `{"event":"transfer.success","data":{"reference":"whatever"}}`
		req := httptest.NewRequest("POST", "/webhook/paystack", strings.NewReader(other))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-paystack-signature", signBody("sk_test_secret", other))

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200 (gateway must not retry)", resp.StatusCode)
		}
	})
}

func TestWebhookUnknownReferenceStillAcknowledged(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db, nil, "pk_test", "sk_test_secret")

	app := fiber.New()
	app.Post("/webhook/paystack", svc.HandleWebhook)

	body := `{"event":"charge.success","data":{"reference":"REF_unknown","status":"success"}}`
	req := httptest.NewRequest("POST", "/webhook/paystack", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-paystack-signature", signBody("sk_test_secret", body))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
