// handlers/payment_routes.go
package handlers

import (
	"earnio-backend/middleware"
	"earnio-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App, paymentService *services.PaymentService) {
	auth := middleware.AuthMiddleware()

	// Gateway callbacks — signature-verified, never behind user auth.
	// Registered on both spellings because the dashboard config drifted once.
	app.Post("/webhook/paystack", paymentService.HandleWebhook)
	app.Post("/webhooks/paystack", paymentService.HandleWebhook)

	// Public: the post-checkout redirect page polls this before the user
	// has a session token. The gateway verify call is the gate.
	app.Get("/verify/:reference", paymentService.VerifyPayment)

	app.Post("/pay/initiate", auth, paymentService.InitiatePayment)
	app.Post("/pay/mark-paid", auth, paymentService.MarkPaid)
	app.Post("/courses/verify-payment", auth, paymentService.VerifyCoursePayment)
}
