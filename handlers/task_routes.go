// handlers/task_routes.go
package handlers

import (
	"earnio-backend/middleware"
	"earnio-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupTaskRoutes(app *fiber.App, taskService *services.TaskService, db *gorm.DB) {
	auth := middleware.AuthMiddleware()

	app.Get("/tasks/available", auth, taskService.AvailableTasks)
	app.Post("/tasks/:id/complete", auth, taskService.CompleteTask)

	admin := app.Group("/admin", auth, middleware.AdminOnly(db))
	admin.Get("/task-submissions", taskService.ListSubmissions)
	admin.Post("/task-submissions/:id/approve", taskService.ApproveSubmissionHandler)
	admin.Post("/task-submissions/:id/reject", taskService.RejectSubmissionHandler)

	admin.Get("/tasks", taskService.ListTasks)
	admin.Post("/tasks", taskService.CreateTask)
	admin.Put("/tasks/:id", taskService.UpdateTask)
	admin.Delete("/tasks/:id", taskService.DeleteTask)
}
