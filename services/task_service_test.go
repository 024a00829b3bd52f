package services

import (
	"errors"
	"testing"

	"earnio-backend/models"
)

func createTestTask(t *testing.T, svc *TaskService, rewardKES int64, dailyLimit int) models.Task {
	t.Helper()

	task := models.Task{
		Title:      "Watch the intro video",
		RewardKES:  rewardKES,
		TaskType:   "general",
		DailyLimit: dailyLimit,
		IsActive:   true,
	}
	if err := svc.DB.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return task
}

func TestSubmitTaskDailyLimit(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	user := createTestUser(t, db, "user@example.com", nil)
	task := createTestTask(t, svc, 10, 1)

	if err := svc.SubmitTask(user.ID, task.ID, "screenshot.png"); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	err := svc.SubmitTask(user.ID, task.ID, "screenshot2.png")
	if !errors.Is(err, ErrDailyLimit) {
		t.Fatalf("expected ErrDailyLimit, got %v", err)
	}
}

func TestSubmitTaskRejectedDoesNotCount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	admin := createTestUser(t, db, "admin@example.com", nil)
	user := createTestUser(t, db, "user@example.com", nil)
	task := createTestTask(t, svc, 10, 1)

	if err := svc.SubmitTask(user.ID, task.ID, "bad-proof.png"); err != nil {
		t.Fatalf("submission failed: %v", err)
	}

	var submission models.TaskSubmission
	db.Where("user_id = ?", user.ID).First(&submission)
	if err := svc.RejectSubmission(submission.ID, admin.ID); err != nil {
		t.Fatalf("rejection failed: %v", err)
	}

	// A rejection frees the slot the same day
	if err := svc.SubmitTask(user.ID, task.ID, "better-proof.png"); err != nil {
		t.Fatalf("resubmission after rejection failed: %v", err)
	}
}

func TestSubmitTaskInactive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	user := createTestUser(t, db, "user@example.com", nil)
	task := createTestTask(t, svc, 10, 1)
	db.Model(&task).Update("is_active", false)

	err := svc.SubmitTask(user.ID, task.ID, "proof.png")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestApproveSubmissionCreditsOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	admin := createTestUser(t, db, "admin@example.com", nil)
	user := createTestUser(t, db, "user@example.com", nil)
	task := createTestTask(t, svc, 10, 1)

	if err := svc.SubmitTask(user.ID, task.ID, "proof.png"); err != nil {
		t.Fatalf("submission failed: %v", err)
	}
	var submission models.TaskSubmission
	db.Where("user_id = ?", user.ID).First(&submission)

	if err := svc.ApproveSubmission(submission.ID, admin.ID); err != nil {
		t.Fatalf("approval failed: %v", err)
	}

	wantUnits := int64(10 * UnitsPerKES)
	if got := walletBalance(t, db, user.ID); got != wantUnits {
		t.Errorf("balance = %d, want %d", got, wantUnits)
	}

	// Second approval must conflict, not credit again
	err := svc.ApproveSubmission(submission.ID, admin.ID)
	if !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}
	if got := walletBalance(t, db, user.ID); got != wantUnits {
		t.Errorf("balance after double approve = %d, want %d", got, wantUnits)
	}

	var txCount int64
	db.Model(&models.Transaction{}).
		Where("user_id = ? AND kind = ?", user.ID, models.TxKindTaskReward).Count(&txCount)
	if txCount != 1 {
		t.Errorf("task_reward transactions = %d, want 1", txCount)
	}

	var updated models.TaskSubmission
	db.First(&updated, "id = ?", submission.ID)
	if updated.ReviewedBy == nil || *updated.ReviewedBy != admin.ID {
		t.Error("reviewer identity not recorded")
	}
}

func TestRejectSubmissionNoCredit(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	admin := createTestUser(t, db, "admin@example.com", nil)
	user := createTestUser(t, db, "user@example.com", nil)
	task := createTestTask(t, svc, 25, 1)

	if err := svc.SubmitTask(user.ID, task.ID, "proof.png"); err != nil {
		t.Fatalf("submission failed: %v", err)
	}
	var submission models.TaskSubmission
	db.Where("user_id = ?", user.ID).First(&submission)

	if err := svc.RejectSubmission(submission.ID, admin.ID); err != nil {
		t.Fatalf("rejection failed: %v", err)
	}

	if got := walletBalance(t, db, user.ID); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}

	var updated models.TaskSubmission
	db.First(&updated, "id = ?", submission.ID)
	if updated.Status != models.SubmissionRejected {
		t.Errorf("status = %q, want rejected", updated.Status)
	}
}

func TestRejectMissingSubmission(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	admin := createTestUser(t, db, "admin@example.com", nil)
	err := svc.RejectSubmission(9999, admin.ID)
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}
