// earnio-backend/services/course_admin.go
package services

import (
	"log"
	"time"

	"earnio-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Admin-side course management. All handlers here sit behind AdminOnly.

// ListAdminCourses handles GET /admin/courses — drafts included.
func (s *CourseService) ListAdminCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := s.DB.Order("created_at DESC").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch courses"})
	}

	out := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		out = append(out, fiber.Map{
			"id":                course.ID,
			"title":             course.Title,
			"slug":              course.Slug,
			"short_description": course.ShortDescription,
			"thumbnail_url":     course.ThumbnailURL,
			"category":          course.Category,
			"duration_hours":    course.DurationHours,
			"priceKES":          float64(course.PriceUnits) / UnitsPerKES,
			"is_published":      course.IsPublished,
			"created_at":        course.CreatedAt,
		})
	}
	return c.JSON(out)
}

type courseInput struct {
	Title            string  `json:"title"`
	ShortDescription string  `json:"short_description"`
	Description      string  `json:"description"`
	ThumbnailURL     *string `json:"thumbnail_url"`
	PriceKES         int64   `json:"price"`
	Category         string  `json:"category"`
	DurationHours    int     `json:"duration_hours"`
	IsPublished      *bool   `json:"is_published"`
}

// CreateCourse handles POST /admin/courses
func (s *CourseService) CreateCourse(c *fiber.Ctx) error {
	adminID := c.Locals("user_id").(string)

	var input courseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if input.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Title is required"})
	}

	course := models.Course{
		Title:            input.Title,
		Slug:             slug.Make(input.Title),
		ShortDescription: input.ShortDescription,
		Description:      input.Description,
		ThumbnailURL:     input.ThumbnailURL,
		PriceUnits:       input.PriceKES * UnitsPerKES,
		Category:         input.Category,
		DurationHours:    input.DurationHours,
		CreatedBy:        adminID,
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}

	if err := s.DB.Create(&course).Error; err != nil {
		log.Printf("[Admin] Course creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create course"})
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

// UpdateCourse handles PUT /admin/courses/:id — partial update, slug follows
// the title when it changes.
func (s *CourseService) UpdateCourse(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}

	var course models.Course
	if err := s.DB.First(&course, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Course not found"})
	}

	var input courseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if input.Title != "" && input.Title != course.Title {
		updates["title"] = input.Title
		updates["slug"] = slug.Make(input.Title)
	}
	if input.ShortDescription != "" {
		updates["short_description"] = input.ShortDescription
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.ThumbnailURL != nil {
		updates["thumbnail_url"] = *input.ThumbnailURL
	}
	if input.PriceKES > 0 {
		updates["price_units"] = input.PriceKES * UnitsPerKES
	}
	if input.Category != "" {
		updates["category"] = input.Category
	}
	if input.DurationHours > 0 {
		updates["duration_hours"] = input.DurationHours
	}
	if input.IsPublished != nil {
		updates["is_published"] = *input.IsPublished
	}

	if err := s.DB.Model(&course).Updates(updates).Error; err != nil {
		log.Printf("[Admin] Course update failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update course"})
	}
	return c.JSON(course)
}

// DeleteCourse handles DELETE /admin/courses/:id
func (s *CourseService) DeleteCourse(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}

	result := s.DB.Delete(&models.Course{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete course"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Course not found"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// PublishCourse handles PATCH /admin/courses/:id/publish
func (s *CourseService) PublishCourse(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}

	var input struct {
		IsPublished bool `json:"is_published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	result := s.DB.Model(&models.Course{}).Where("id = ?", id).
		Update("is_published", input.IsPublished)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update course"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Course not found"})
	}
	return c.JSON(fiber.Map{"success": true, "is_published": input.IsPublished})
}

// --- Chapters ---

// CreateChapter handles POST /admin/courses/:id/chapters — appends at the
// end of the ordering unless an explicit position is given.
func (s *CourseService) CreateChapter(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}

	var input struct {
		Title       string  `json:"title"`
		Category    *string `json:"category"`
		ContentHTML string  `json:"content_html"`
		OrderNum    *int    `json:"order_num"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if input.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Title is required"})
	}

	var course models.Course
	if err := s.DB.Select("id").First(&course, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Course not found"})
	}

	orderNum := 0
	if input.OrderNum != nil {
		orderNum = *input.OrderNum
	} else {
		var maxOrder *int
		s.DB.Model(&models.Chapter{}).Where("course_id = ?", id).
			Select("MAX(order_num)").Scan(&maxOrder)
		if maxOrder != nil {
			orderNum = *maxOrder + 1
		}
	}

	chapter := models.Chapter{
		CourseID:    uint(id),
		Title:       input.Title,
		Category:    input.Category,
		ContentHTML: input.ContentHTML,
		OrderNum:    orderNum,
	}
	if err := s.DB.Create(&chapter).Error; err != nil {
		log.Printf("[Admin] Chapter creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create chapter"})
	}
	return c.Status(fiber.StatusCreated).JSON(chapter)
}

// UpdateChapter handles PUT /admin/chapters/:id
func (s *CourseService) UpdateChapter(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid chapter ID"})
	}

	var chapter models.Chapter
	if err := s.DB.First(&chapter, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Chapter not found"})
	}

	var input struct {
		Title       string  `json:"title"`
		Category    *string `json:"category"`
		ContentHTML *string `json:"content_html"`
		OrderNum    *int    `json:"order_num"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.ContentHTML != nil {
		updates["content_html"] = *input.ContentHTML
	}
	if input.OrderNum != nil {
		updates["order_num"] = *input.OrderNum
	}

	if err := s.DB.Model(&chapter).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update chapter"})
	}
	return c.JSON(chapter)
}

// DeleteChapter handles DELETE /admin/chapters/:id
func (s *CourseService) DeleteChapter(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid chapter ID"})
	}

	result := s.DB.Delete(&models.Chapter{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete chapter"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Chapter not found"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// ReorderChapters handles PUT /admin/courses/:id/chapters/reorder — takes
// the full ordered ID list and rewrites order_num in one transaction.
func (s *CourseService) ReorderChapters(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}

	var input struct {
		ChapterIDs []uint `json:"chapter_ids"`
	}
	if err := c.BodyParser(&input); err != nil || len(input.ChapterIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "chapter_ids is required"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for i, chapterID := range input.ChapterIDs {
			if err := tx.Model(&models.Chapter{}).
				Where("id = ? AND course_id = ?", chapterID, id).
				Update("order_num", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[Admin] Chapter reorder failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to reorder chapters"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// --- Lessons ---

// CreateLesson handles POST /admin/courses/:id/lessons
func (s *CourseService) CreateLesson(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}

	var input struct {
		Title           string `json:"title"`
		VideoURL        string `json:"video_url"`
		DurationMinutes int    `json:"duration_minutes"`
		OrderIndex      *int   `json:"order_index"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if input.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Title is required"})
	}

	var course models.Course
	if err := s.DB.Select("id").First(&course, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Course not found"})
	}

	orderIndex := 0
	if input.OrderIndex != nil {
		orderIndex = *input.OrderIndex
	} else {
		var maxOrder *int
		s.DB.Model(&models.Lesson{}).Where("course_id = ?", id).
			Select("MAX(order_index)").Scan(&maxOrder)
		if maxOrder != nil {
			orderIndex = *maxOrder + 1
		}
	}

	lesson := models.Lesson{
		CourseID:        uint(id),
		Title:           input.Title,
		VideoURL:        input.VideoURL,
		DurationMinutes: input.DurationMinutes,
		OrderIndex:      orderIndex,
	}
	if err := s.DB.Create(&lesson).Error; err != nil {
		log.Printf("[Admin] Lesson creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create lesson"})
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

// UpdateLesson handles PUT /admin/lessons/:id
func (s *CourseService) UpdateLesson(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid lesson ID"})
	}

	var lesson models.Lesson
	if err := s.DB.First(&lesson, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Lesson not found"})
	}

	var input struct {
		Title           string `json:"title"`
		VideoURL        string `json:"video_url"`
		DurationMinutes *int   `json:"duration_minutes"`
		OrderIndex      *int   `json:"order_index"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.VideoURL != "" {
		updates["video_url"] = input.VideoURL
	}
	if input.DurationMinutes != nil {
		updates["duration_minutes"] = *input.DurationMinutes
	}
	if input.OrderIndex != nil {
		updates["order_index"] = *input.OrderIndex
	}

	if err := s.DB.Model(&lesson).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update lesson"})
	}
	return c.JSON(lesson)
}

// DeleteLesson handles DELETE /admin/lessons/:id
func (s *CourseService) DeleteLesson(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid lesson ID"})
	}

	result := s.DB.Delete(&models.Lesson{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete lesson"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Lesson not found"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// --- Resources ---

// AddResource handles POST /admin/courses/:id/resources
func (s *CourseService) AddResource(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid course ID"})
	}

	var input struct {
		Type       string `json:"type"`
		Title      string `json:"title"`
		URL        string `json:"url"`
		OrderIndex int    `json:"order_index"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if input.Title == "" || input.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Title and URL are required"})
	}

	resource := models.CourseResource{
		CourseID:   uint(id),
		Type:       input.Type,
		Title:      input.Title,
		URL:        input.URL,
		OrderIndex: input.OrderIndex,
	}
	if err := s.DB.Create(&resource).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to add resource"})
	}
	return c.Status(fiber.StatusCreated).JSON(resource)
}

// DeleteResource handles DELETE /admin/resources/:id
func (s *CourseService) DeleteResource(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid resource ID"})
	}

	result := s.DB.Delete(&models.CourseResource{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete resource"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Resource not found"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// --- Orders ---

// ListCourseOrders handles GET /admin/course-orders
func (s *CourseService) ListCourseOrders(c *fiber.Ctx) error {
	var orders []models.CourseOrder
	if err := s.DB.Preload("Course").Order("created_at DESC").Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch orders"})
	}

	out := make([]fiber.Map, 0, len(orders))
	for _, o := range orders {
		var email string
		s.DB.Model(&models.User{}).Where("id = ?", o.UserID).Pluck("email", &email)
		out = append(out, fiber.Map{
			"id":              o.ID,
			"user_id":         o.UserID,
			"email":           email,
			"course_id":       o.CourseID,
			"courseTitle":     o.Course.Title,
			"amount_units":    o.AmountUnits,
			"transaction_ref": o.TransactionRef,
			"status":          o.Status,
			"created_at":      o.CreatedAt,
		})
	}
	return c.JSON(out)
}

// CourseOrderAction handles POST /admin/course-orders/:id/action — approval
// grants ownership through the shared purchase path so duplicates collapse.
func (s *CourseService) CourseOrderAction(c *fiber.Ctx) error {
	adminID := c.Locals("user_id").(string)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid order ID"})
	}

	var input struct {
		Action string `json:"action"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if input.Action != "approve" && input.Action != "reject" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Action must be approve or reject"})
	}

	var order models.CourseOrder
	if err := s.DB.First(&order, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
	}
	if order.Status != models.OrderPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Order already processed"})
	}

	if input.Action == "approve" {
		if _, err := grantCoursePurchase(s.DB, order.UserID, order.CourseID, order.AmountUnits, order.TransactionRef); err != nil {
			log.Printf("[Admin] Order approval grant failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to approve order"})
		}
	}

	status := models.OrderApproved
	if input.Action == "reject" {
		status = models.OrderRejected
	}
	now := time.Now()
	if err := s.DB.Model(&order).Updates(map[string]interface{}{
		"status":      status,
		"approved_by": adminID,
		"approved_at": now,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update order"})
	}

	return c.JSON(fiber.Map{"success": true, "status": status})
}

// GrantCourseAccess handles POST /admin/grant-course-access — manual grant
// for support cases, no payment trail required.
func (s *CourseService) GrantCourseAccess(c *fiber.Ctx) error {
	var input struct {
		UserID   string `json:"userId"`
		Email    string `json:"email"`
		CourseID uint   `json:"courseId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if input.CourseID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "courseId is required"})
	}

	userID := input.UserID
	if userID == "" && input.Email != "" {
		var user models.User
		if err := s.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		userID = user.ID
	}
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "userId or email is required"})
	}

	var course models.Course
	if err := s.DB.Select("id").First(&course, "id = ?", input.CourseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Course not found"})
	}

	created, err := grantCoursePurchase(s.DB, userID, input.CourseID, 0, "ADMIN_GRANT")
	if err != nil {
		log.Printf("[Admin] Manual grant failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to grant access"})
	}
	if !created {
		return c.JSON(fiber.Map{"success": true, "message": "User already owns this course"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Access granted"})
}
