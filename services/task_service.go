// earnio-backend/services/task_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"earnio-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found or inactive")
	ErrDailyLimit         = errors.New("daily limit reached for this task")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyApproved    = errors.New("submission already approved")
)

type TaskService struct {
	DB *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{DB: db}
}

// SubmitTask files a pending proof-of-completion, gated by the task's daily
// limit. Rejected submissions don't count against the limit — the user may
// try again the same day.
func (s *TaskService) SubmitTask(userID string, taskID uint, proof string) error {
	var task models.Task
	if err := s.DB.First(&task, "id = ?", taskID).Error; err != nil || !task.IsActive {
		return ErrTaskNotFound
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	err := s.DB.Model(&models.TaskSubmission{}).
		Where("user_id = ? AND task_id = ? AND created_at >= ? AND status <> ?",
			userID, taskID, dayStart, models.SubmissionRejected).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count >= int64(task.DailyLimit) {
		return ErrDailyLimit
	}

	submission := models.TaskSubmission{
		UserID:    userID,
		TaskID:    taskID,
		Status:    models.SubmissionPending,
		ProofData: proof,
	}
	return s.DB.Create(&submission).Error
}

// ApproveSubmission is the three-step reward: credit the wallet (reward is
// stored in shillings, the wallet counts units), append the success ledger
// row, then flip the submission with reviewer identity. A submission that is
// already approved must conflict — that is the only thing standing between
// an impatient admin double-click and a double credit.
func (s *TaskService) ApproveSubmission(submissionID uint, reviewerID string) error {
	var submission models.TaskSubmission
	if err := s.DB.Preload("Task").First(&submission, "id = ?", submissionID).Error; err != nil {
		return ErrSubmissionNotFound
	}

	if submission.Status == models.SubmissionApproved {
		return ErrAlreadyApproved
	}

	rewardUnits := submission.Task.RewardKES * UnitsPerKES

	if err := creditWallet(s.DB, submission.UserID, rewardUnits); err != nil {
		return err
	}

	taskID := submission.TaskID
	rewardTx := models.Transaction{
		Reference:   fmt.Sprintf("TASK_%d_%d", submissionID, time.Now().UnixMilli()),
		UserID:      submission.UserID,
		AmountUnits: rewardUnits,
		Currency:    Currency,
		Status:      models.TxStatusSuccess,
		Kind:        models.TxKindTaskReward,
		TaskID:      &taskID,
	}
	if err := s.DB.Create(&rewardTx).Error; err != nil {
		return err
	}

	now := time.Now()
	return s.DB.Model(&submission).Updates(map[string]interface{}{
		"status":      models.SubmissionApproved,
		"reviewed_by": &reviewerID,
		"reviewed_at": &now,
	}).Error
}

// RejectSubmission is a pure status transition — no wallet effect.
func (s *TaskService) RejectSubmission(submissionID uint, reviewerID string) error {
	now := time.Now()
	res := s.DB.Model(&models.TaskSubmission{}).
		Where("id = ?", submissionID).
		Updates(map[string]interface{}{
			"status":      models.SubmissionRejected,
			"reviewed_by": &reviewerID,
			"reviewed_at": &now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// --- User handlers ---

// AvailableTasks handles GET /tasks/available — active tasks annotated with
// the caller's submission status.
func (s *TaskService) AvailableTasks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var tasks []models.Task
	if err := s.DB.Where("is_active = ?", true).Order("created_at DESC").Find(&tasks).Error; err != nil {
		log.Printf("[Tasks] Fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch tasks"})
	}

	var submissions []models.TaskSubmission
	s.DB.Where("user_id = ?", userID).Find(&submissions)

	subMap := make(map[uint]string, len(submissions))
	for _, sub := range submissions {
		subMap[sub.TaskID] = sub.Status
	}

	type taskView struct {
		models.Task
		Reward    int64   `json:"reward"`
		ActionURL string  `json:"action_url"`
		Status    *string `json:"status"`
		Completed bool    `json:"completed"`
	}

	out := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		view := taskView{Task: t, Reward: t.RewardKES, ActionURL: t.URL}
		if status, ok := subMap[t.ID]; ok {
			view.Status = &status
			// pending counts as completed so the UI blocks a re-submit
			view.Completed = status == models.SubmissionApproved || status == models.SubmissionPending
		}
		out = append(out, view)
	}

	return c.JSON(out)
}

// CompleteTask handles POST /tasks/:id/complete
func (s *TaskService) CompleteTask(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	taskID, err := c.ParamsInt("id")
	if err != nil || taskID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var input struct {
		Proof string `json:"proof"`
	}
	_ = c.BodyParser(&input) // proof is optional

	switch err := s.SubmitTask(userID, uint(taskID), input.Proof); {
	case errors.Is(err, ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found or inactive"})
	case errors.Is(err, ErrDailyLimit):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Daily limit reached for this task"})
	case err != nil:
		log.Printf("[Tasks] Submit failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to submit task"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Task submitted for review. Earnings will be credited after approval.",
	})
}

// --- Admin handlers ---

// ListSubmissions handles GET /admin/task-submissions
func (s *TaskService) ListSubmissions(c *fiber.Ctx) error {
	var submissions []models.TaskSubmission
	if err := s.DB.Preload("Task").Order("created_at DESC").Find(&submissions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch submissions"})
	}
	return c.JSON(submissions)
}

// ApproveSubmissionHandler handles POST /admin/task-submissions/:id/approve
func (s *TaskService) ApproveSubmissionHandler(c *fiber.Ctx) error {
	reviewerID := c.Locals("user_id").(string)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid submission ID"})
	}

	switch err := s.ApproveSubmission(uint(id), reviewerID); {
	case errors.Is(err, ErrSubmissionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Submission not found"})
	case errors.Is(err, ErrAlreadyApproved):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Already approved"})
	case err != nil:
		log.Printf("[Tasks] Approve failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to approve task"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// RejectSubmissionHandler handles POST /admin/task-submissions/:id/reject
func (s *TaskService) RejectSubmissionHandler(c *fiber.Ctx) error {
	reviewerID := c.Locals("user_id").(string)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid submission ID"})
	}

	switch err := s.RejectSubmission(uint(id), reviewerID); {
	case errors.Is(err, ErrSubmissionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Submission not found"})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to reject task"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// ListTasks handles GET /admin/tasks
func (s *TaskService) ListTasks(c *fiber.Ctx) error {
	var tasks []models.Task
	if err := s.DB.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch tasks"})
	}
	return c.JSON(tasks)
}

// CreateTask handles POST /admin/tasks
func (s *TaskService) CreateTask(c *fiber.Ctx) error {
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		RewardKES   int64  `json:"reward_kes"`
		TaskType    string `json:"task_type"`
		URL         string `json:"url"`
		DailyLimit  int    `json:"daily_limit"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if input.Title == "" || input.RewardKES <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Title and reward required"})
	}

	task := models.Task{
		Title:       input.Title,
		Description: input.Description,
		RewardKES:   input.RewardKES,
		TaskType:    input.TaskType,
		URL:         input.URL,
		DailyLimit:  input.DailyLimit,
		IsActive:    true,
	}
	if task.TaskType == "" {
		task.TaskType = "general"
	}
	if task.DailyLimit <= 0 {
		task.DailyLimit = 1
	}

	if err := s.DB.Create(&task).Error; err != nil {
		log.Printf("[Tasks] Create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create task"})
	}

	return c.JSON(fiber.Map{"success": true, "task": task})
}

// UpdateTask handles PUT /admin/tasks/:id
func (s *TaskService) UpdateTask(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		RewardKES   *int64  `json:"reward_kes"`
		TaskType    *string `json:"task_type"`
		URL         *string `json:"url"`
		DailyLimit  *int    `json:"daily_limit"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.RewardKES != nil {
		updates["reward_kes"] = *input.RewardKES
	}
	if input.TaskType != nil {
		updates["task_type"] = *input.TaskType
	}
	if input.URL != nil {
		updates["url"] = *input.URL
	}
	if input.DailyLimit != nil {
		updates["daily_limit"] = *input.DailyLimit
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := s.DB.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update task"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteTask handles DELETE /admin/tasks/:id
func (s *TaskService) DeleteTask(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	if err := s.DB.Delete(&models.Task{}, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete task"})
	}

	return c.JSON(fiber.Map{"success": true})
}
