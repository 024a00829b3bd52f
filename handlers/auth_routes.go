// handlers/auth_routes.go
package handlers

import (
	"earnio-backend/middleware"
	"earnio-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService) {
	app.Post("/auth/signup", authService.Signup)
	app.Post("/auth/login", authService.Login)
	app.Post("/auth/update-password", middleware.AuthMiddleware(), authService.UpdatePassword)
}
