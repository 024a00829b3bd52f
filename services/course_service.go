// earnio-backend/services/course_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"earnio-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseService struct {
	DB *gorm.DB
	// PublicKey is handed to clients initiating hosted checkout.
	PublicKey string
}

func NewCourseService(db *gorm.DB, publicKey string) *CourseService {
	return &CourseService{DB: db, PublicKey: publicKey}
}

// HasAccess is the single ownership rule: admins see everything, everyone
// else needs a purchase row.
func (s *CourseService) HasAccess(userID string, courseID uint) (bool, error) {
	var user models.User
	if err := s.DB.Select("is_admin").Where("id = ?", userID).First(&user).Error; err != nil {
		return false, err
	}
	if user.IsAdmin {
		return true, nil
	}

	var count int64
	err := s.DB.Model(&models.CoursePurchase{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// ListCourses handles GET /courses — the public catalog.
func (s *CourseService) ListCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := s.DB.Where("is_published = ?", true).Order("created_at DESC").Find(&courses).Error; err != nil {
		log.Printf("[Courses] Fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch courses"})
	}

	out := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		var lessonCount int64
		s.DB.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Count(&lessonCount)

		out = append(out, fiber.Map{
			"id":                course.ID,
			"title":             course.Title,
			"slug":              course.Slug,
			"short_description": course.ShortDescription,
			"description":       course.Description,
			"thumbnail_url":     course.ThumbnailURL,
			"category":          course.Category,
			"duration_hours":    course.DurationHours,
			"priceKES":          float64(course.PriceUnits) / UnitsPerKES,
			"lesson_count":      lessonCount,
		})
	}

	return c.JSON(out)
}

// GetCourse handles GET /courses/:id — published detail with its lessons.
func (s *CourseService) GetCourse(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}

	var course models.Course
	if err := s.DB.Where("id = ? AND is_published = ?", id, true).First(&course).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Course not found"})
	}

	var lessons []models.Lesson
	s.DB.Select("id, course_id, title, duration_minutes, order_index").
		Where("course_id = ?", course.ID).
		Order("order_index ASC").Find(&lessons)

	return c.JSON(fiber.Map{
		"id":                course.ID,
		"title":             course.Title,
		"slug":              course.Slug,
		"short_description": course.ShortDescription,
		"description":       course.Description,
		"thumbnail_url":     course.ThumbnailURL,
		"category":          course.Category,
		"duration_hours":    course.DurationHours,
		"priceKES":          float64(course.PriceUnits) / UnitsPerKES,
		"lessons":           lessons,
	})
}

// CourseAccess handles GET /courses/:id/access
func (s *CourseService) CourseAccess(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}

	hasAccess, err := s.HasAccess(userID, uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to check access"})
	}
	return c.JSON(fiber.Map{"hasAccess": hasAccess})
}

// MyCourses handles GET /my-courses — owned courses with completion ratio.
func (s *CourseService) MyCourses(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var purchases []models.CoursePurchase
	if err := s.DB.Preload("Course").Where("user_id = ?", userID).
		Order("purchased_at DESC").Find(&purchases).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch courses"})
	}

	out := make([]fiber.Map, 0, len(purchases))
	for _, p := range purchases {
		var lessonIDs []uint
		s.DB.Model(&models.Lesson{}).Where("course_id = ?", p.CourseID).Pluck("id", &lessonIDs)

		var completed int64
		if len(lessonIDs) > 0 {
			s.DB.Model(&models.LessonProgress{}).
				Where("user_id = ? AND completed = ? AND lesson_id IN ?", userID, true, lessonIDs).
				Count(&completed)
		}

		progress := 0
		if len(lessonIDs) > 0 {
			progress = int(float64(completed)/float64(len(lessonIDs))*100 + 0.5)
		}

		out = append(out, fiber.Map{
			"id":                p.Course.ID,
			"title":             p.Course.Title,
			"description":       p.Course.Description,
			"thumbnail_url":     p.Course.ThumbnailURL,
			"duration_hours":    p.Course.DurationHours,
			"priceKES":          float64(p.Course.PriceUnits) / UnitsPerKES,
			"purchased_at":      p.PurchasedAt,
			"total_lessons":     len(lessonIDs),
			"completed_lessons": completed,
			"progress":          progress,
		})
	}

	return c.JSON(out)
}

// OwnedCourses handles GET /courses/owned — lightweight ID list for
// lock/unlock badges. Admins own everything.
func (s *CourseService) OwnedCourses(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var user models.User
	if err := s.DB.Select("is_admin").Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch owned courses"})
	}

	type owned struct {
		CourseID uint `json:"course_id"`
	}

	if user.IsAdmin {
		var ids []uint
		s.DB.Model(&models.Course{}).Pluck("id", &ids)
		out := make([]owned, len(ids))
		for i, id := range ids {
			out[i] = owned{CourseID: id}
		}
		return c.JSON(out)
	}

	var ids []uint
	if err := s.DB.Model(&models.CoursePurchase{}).Where("user_id = ?", userID).
		Pluck("course_id", &ids).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch owned courses"})
	}
	out := make([]owned, len(ids))
	for i, id := range ids {
		out[i] = owned{CourseID: id}
	}
	return c.JSON(out)
}

// MyOrders handles GET /my-orders — the caller's manual-review purchases.
func (s *CourseService) MyOrders(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var orders []models.CourseOrder
	if err := s.DB.Preload("Course").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch orders"})
	}

	out := make([]fiber.Map, 0, len(orders))
	for _, o := range orders {
		out = append(out, fiber.Map{
			"id":              o.ID,
			"course_id":       o.CourseID,
			"amount_units":    o.AmountUnits,
			"transaction_ref": o.TransactionRef,
			"status":          o.Status,
			"created_at":      o.CreatedAt,
			"courseTitle":     o.Course.Title,
		})
	}
	return c.JSON(out)
}

// PurchaseCourse handles POST /courses/:id/purchase — creates the pending
// transaction for hosted checkout. The COURSE_ reference carries the course
// and buyer so even a metadata-less webhook can be resolved.
func (s *CourseService) PurchaseCourse(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}
	courseID := uint(id)

	var existing int64
	s.DB.Model(&models.CoursePurchase{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).Count(&existing)
	if existing > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Course already purchased"})
	}

	var course models.Course
	if err := s.DB.Where("id = ? AND is_published = ?", courseID, true).First(&course).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Course not found"})
	}

	reference := fmt.Sprintf("COURSE_%d_%d_%s", courseID, time.Now().UnixMilli(), userID)

	tx := models.Transaction{
		Reference:   reference,
		UserID:      userID,
		AmountUnits: course.PriceUnits,
		Currency:    Currency,
		Status:      models.TxStatusPending,
		Kind:        models.TxKindCoursePurchase,
		CourseID:    &courseID,
	}
	if err := s.DB.Create(&tx).Error; err != nil {
		log.Printf("[Courses] Transaction creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Transaction creation failed"})
	}

	return c.JSON(fiber.Map{
		"reference":   reference,
		"amount":      course.PriceUnits,
		"key":         s.PublicKey,
		"courseTitle": course.Title,
	})
}

// CreateOrder handles POST /courses/:id/order — the client reports a payment
// before/without webhook confirmation; an admin settles it later.
func (s *CourseService) CreateOrder(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}
	courseID := uint(id)

	var input struct {
		Reference   string `json:"reference"`
		PaystackRef string `json:"paystackRef"`
		Amount      int64  `json:"amount"`
	}
	_ = c.BodyParser(&input)

	var existing models.CourseOrder
	if err := s.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&existing).Error; err == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Order already submitted",
			"orderId": existing.ID,
			"status":  existing.Status,
		})
	}

	var purchased int64
	s.DB.Model(&models.CoursePurchase{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).Count(&purchased)
	if purchased > 0 {
		return c.JSON(fiber.Map{"success": true, "message": "Course already owned"})
	}

	ref := input.PaystackRef
	if ref == "" {
		ref = input.Reference
	}

	order := models.CourseOrder{
		UserID:         userID,
		CourseID:       courseID,
		AmountUnits:    input.Amount,
		TransactionRef: ref,
		Status:         models.OrderPending,
	}
	if err := s.DB.Create(&order).Error; err != nil {
		log.Printf("[Courses] Order creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Order failed"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order submitted for verification",
		"orderId": order.ID,
	})
}

// UnlockCourse handles POST /courses/:id/unlock — the low-trust shortcut:
// ownership granted on the client's say-so. It still converges on the same
// purchase uniqueness as every trusted path.
func (s *CourseService) UnlockCourse(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}
	courseID := uint(id)

	var input struct {
		Reference   string `json:"reference"`
		PaystackRef string `json:"paystackRef"`
		Amount      int64  `json:"amount"`
	}
	_ = c.BodyParser(&input)

	ref := input.PaystackRef
	if ref == "" {
		ref = input.Reference
	}

	created, err := grantCoursePurchase(s.DB, userID, courseID, input.Amount, ref)
	if err != nil {
		log.Printf("[Unlock] Purchase grant failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Unlock failed"})
	}
	if !created {
		return c.JSON(fiber.Map{"success": true, "message": "Course already owned"})
	}

	// Settle the pending transaction if the client told us which one
	if input.Reference != "" {
		s.DB.Model(&models.Transaction{}).
			Where("reference = ? AND status = ?", input.Reference, models.TxStatusPending).
			Update("status", models.TxStatusSuccess)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Course unlocked!"})
}

// --- Progress tracking ---

// UpdateLessonProgress handles POST /lessons/:id/progress — last-write-wins
// upsert keyed by (user, lesson).
func (s *CourseService) UpdateLessonProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid lesson ID"})
	}

	var input struct {
		Completed      bool `json:"completed"`
		WatchedSeconds int  `json:"watched_seconds"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	var lesson models.Lesson
	if err := s.DB.Select("course_id").First(&lesson, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Lesson not found"})
	}

	hasAccess, err := s.HasAccess(userID, lesson.CourseID)
	if err != nil || !hasAccess {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Access denied"})
	}

	progress := models.LessonProgress{
		UserID:         userID,
		LessonID:       uint(id),
		Completed:      input.Completed,
		WatchedSeconds: input.WatchedSeconds,
	}
	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "watched_seconds", "updated_at"}),
	}).Create(&progress).Error
	if err != nil {
		log.Printf("[Progress] Lesson upsert failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update progress"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetChapters handles GET /courses/:id/chapters — titles only, no content.
func (s *CourseService) GetChapters(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}

	var chapters []models.Chapter
	if err := s.DB.Select("id, course_id, title, category, order_num").
		Where("course_id = ?", id).Order("order_num ASC").Find(&chapters).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch chapters"})
	}
	return c.JSON(chapters)
}

// GetChapter handles GET /chapters/:id — full content, access gated.
func (s *CourseService) GetChapter(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid chapter ID"})
	}

	var chapter models.Chapter
	if err := s.DB.First(&chapter, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Chapter not found"})
	}

	hasAccess, err := s.HasAccess(userID, chapter.CourseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to check access"})
	}
	if !hasAccess {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Purchase required"})
	}

	return c.JSON(chapter)
}

// UpdateChapterProgress handles POST /chapters/:id/progress — remembers the
// last chapter viewed per course.
func (s *CourseService) UpdateChapterProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid chapter ID"})
	}

	var chapter models.Chapter
	if err := s.DB.Select("course_id").First(&chapter, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Chapter not found"})
	}

	progress := models.ChapterProgress{
		UserID:        userID,
		CourseID:      chapter.CourseID,
		LastChapterID: uint(id),
	}
	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_chapter_id", "updated_at"}),
	}).Create(&progress).Error
	if err != nil {
		log.Printf("[Progress] Chapter upsert failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update progress"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// CourseProgress handles GET /courses/:id/progress
func (s *CourseService) CourseProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}

	var progress models.ChapterProgress
	if err := s.DB.Where("user_id = ? AND course_id = ?", userID, id).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"last_chapter_id": nil})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch progress"})
	}

	return c.JSON(fiber.Map{"last_chapter_id": progress.LastChapterID})
}

// GetResources handles GET /courses/:id/resources
func (s *CourseService) GetResources(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}

	var resources []models.CourseResource
	if err := s.DB.Where("course_id = ?", id).Order("order_index ASC").
		Find(&resources).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch resources"})
	}
	return c.JSON(resources)
}
