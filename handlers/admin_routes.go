// handlers/admin_routes.go
package handlers

import (
	"earnio-backend/middleware"
	"earnio-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAdminRoutes(app *fiber.App, adminService *services.AdminService, db *gorm.DB) {
	admin := app.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly(db))
	admin.Get("/data", adminService.AdminData)
	admin.Get("/stats", adminService.AdminStats)
	admin.Post("/upload-image", adminService.UploadImage)
}
