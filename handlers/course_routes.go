// handlers/course_routes.go
package handlers

import (
	"earnio-backend/middleware"
	"earnio-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupCourseRoutes(app *fiber.App, courseService *services.CourseService, db *gorm.DB) {
	auth := middleware.AuthMiddleware()

	// Catalog browsing needs no account: listings, detail, chapter titles
	// and resource links are public. Chapter CONTENT stays gated below.
	app.Get("/courses", courseService.ListCourses)
	app.Get("/courses/owned", auth, courseService.OwnedCourses)
	app.Get("/courses/:id", courseService.GetCourse)
	app.Get("/courses/:id/chapters", courseService.GetChapters)
	app.Get("/courses/:id/resources", courseService.GetResources)

	app.Get("/courses/:id/access", auth, courseService.CourseAccess)
	app.Get("/courses/:id/progress", auth, courseService.CourseProgress)
	app.Post("/courses/:id/purchase", auth, courseService.PurchaseCourse)
	app.Post("/courses/:id/order", auth, courseService.CreateOrder)
	app.Post("/courses/:id/unlock", auth, courseService.UnlockCourse)

	app.Get("/my-courses", auth, courseService.MyCourses)
	app.Get("/my-orders", auth, courseService.MyOrders)

	app.Get("/chapters/:id", auth, courseService.GetChapter)
	app.Post("/chapters/:id/progress", auth, courseService.UpdateChapterProgress)
	app.Post("/lessons/:id/progress", auth, courseService.UpdateLessonProgress)

	admin := app.Group("/admin", auth, middleware.AdminOnly(db))
	admin.Get("/courses", courseService.ListAdminCourses)
	admin.Post("/courses", courseService.CreateCourse)
	admin.Put("/courses/:id", courseService.UpdateCourse)
	admin.Delete("/courses/:id", courseService.DeleteCourse)
	admin.Patch("/courses/:id/publish", courseService.PublishCourse)

	admin.Post("/courses/:id/chapters", courseService.CreateChapter)
	admin.Put("/courses/:id/chapters/reorder", courseService.ReorderChapters)
	admin.Put("/chapters/:id", courseService.UpdateChapter)
	admin.Delete("/chapters/:id", courseService.DeleteChapter)

	admin.Post("/courses/:id/lessons", courseService.CreateLesson)
	admin.Put("/lessons/:id", courseService.UpdateLesson)
	admin.Delete("/lessons/:id", courseService.DeleteLesson)

	admin.Post("/courses/:id/resources", courseService.AddResource)
	admin.Delete("/resources/:id", courseService.DeleteResource)

	admin.Get("/course-orders", courseService.ListCourseOrders)
	admin.Post("/course-orders/:id/action", courseService.CourseOrderAction)
	admin.Post("/grant-course-access", courseService.GrantCourseAccess)
}
