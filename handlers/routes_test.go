package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"earnio-backend/models"
	"earnio-backend/services"
	"earnio-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp assembles the complete routing table in the same order main
// does. Auth behavior only shows up with every route registered — a route
// tested in isolation can't catch middleware bleeding across registrations.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "routes-test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Referral{},
		&models.Withdrawal{},
		&models.Task{},
		&models.TaskSubmission{},
		&models.Course{},
		&models.Chapter{},
		&models.Lesson{},
		&models.CourseResource{},
		&models.CoursePurchase{},
		&models.CourseOrder{},
		&models.LessonProgress{},
		&models.ChapterProgress{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	// Stub gateway: answers every verify with an unsettled charge.
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":true,"message":"Verification successful","data":{"reference":"x","status":"abandoned"}}`)
	}))
	t.Cleanup(gateway.Close)

	paystack := services.NewPaystackClient(gateway.URL, "sk_test")
	authService := services.NewAuthService(db)
	paymentService := services.NewPaymentService(db, paystack, "pk_test", "sk_test")
	walletService := services.NewWalletService(db)
	taskService := services.NewTaskService(db)
	courseService := services.NewCourseService(db, "pk_test")
	adminService := services.NewAdminService(db)

	app := fiber.New()
	SetupAuthRoutes(app, authService)
	SetupPaymentRoutes(app, paymentService)
	SetupWalletRoutes(app, walletService, db)
	SetupTaskRoutes(app, taskService, db)
	SetupCourseRoutes(app, courseService, db)
	SetupAdminRoutes(app, adminService, db)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return app, db
}

func requestStatus(t *testing.T, app *fiber.App, method, path, token string) int {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp.StatusCode
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	app, db := newTestApp(t)

	course := models.Course{Title: "Forex Basics", Slug: "forex-basics", PriceUnits: 50000, IsPublished: true, CreatedBy: uuid.NewString()}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	db.Create(&models.Chapter{CourseID: course.ID, Title: "Introduction", ContentHTML: "<p>secret</p>"})

	public := []struct {
		method, path string
		want         int
	}{
		{"GET", "/health", fiber.StatusOK},
		{"GET", "/courses", fiber.StatusOK},
		{"GET", fmt.Sprintf("/courses/%d", course.ID), fiber.StatusOK},
		{"GET", fmt.Sprintf("/courses/%d/chapters", course.ID), fiber.StatusOK},
		{"GET", fmt.Sprintf("/courses/%d/resources", course.ID), fiber.StatusOK},
		// Unsettled charge: verified=false but still 200, never 401
		{"GET", "/verify/REF_nonexistent", fiber.StatusOK},
	}
	for _, tc := range public {
		if got := requestStatus(t, app, tc.method, tc.path, ""); got != tc.want {
			t.Errorf("%s %s without token = %d, want %d", tc.method, tc.path, got, tc.want)
		}
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	app, _ := newTestApp(t)

	protected := []struct{ method, path string }{
		{"GET", "/dashboard/data"},
		{"GET", "/tasks/available"},
		{"GET", "/my-courses"},
		{"GET", "/courses/owned"},
		{"GET", "/chapters/1"}, // content stays gated even though titles are public
		{"POST", "/pay/initiate"},
		{"GET", "/admin/stats"},
	}
	for _, tc := range protected {
		if got := requestStatus(t, app, tc.method, tc.path, ""); got != fiber.StatusUnauthorized {
			t.Errorf("%s %s without token = %d, want 401", tc.method, tc.path, got)
		}
	}
}

func TestTokenGrantsMemberNotAdminAccess(t *testing.T) {
	app, db := newTestApp(t)

	member := models.User{
		ID:           uuid.NewString(),
		Email:        "member@example.com",
		PasswordHash: "x",
		ReferralCode: "USERABC123",
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	db.Create(&models.Wallet{UserID: member.ID})

	token, err := utils.GenerateToken(member.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if got := requestStatus(t, app, "GET", "/dashboard/data", token); got != fiber.StatusOK {
		t.Errorf("GET /dashboard/data with token = %d, want 200", got)
	}
	if got := requestStatus(t, app, "GET", "/tasks/available", token); got != fiber.StatusOK {
		t.Errorf("GET /tasks/available with token = %d, want 200", got)
	}
	if got := requestStatus(t, app, "GET", "/admin/tasks", token); got != fiber.StatusForbidden {
		t.Errorf("GET /admin/tasks as member = %d, want 403", got)
	}
}
