// handlers/wallet_routes.go
package handlers

import (
	"earnio-backend/middleware"
	"earnio-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupWalletRoutes(app *fiber.App, walletService *services.WalletService, db *gorm.DB) {
	auth := middleware.AuthMiddleware()

	app.Get("/dashboard/data", auth, walletService.DashboardData)
	app.Post("/withdraw", auth, walletService.RequestWithdrawal)

	admin := app.Group("/admin", auth, middleware.AdminOnly(db))
	admin.Post("/withdrawals/:id/action", walletService.WithdrawalAction)
}
