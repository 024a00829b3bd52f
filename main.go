package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"earnio-backend/handlers"
	"earnio-backend/middleware"
	"earnio-backend/models"
	"earnio-backend/services"
	"earnio-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	// Fail fast on anything the money paths depend on
	for _, key := range []string{"DATABASE_URL", "JWT_SECRET", "PAYSTACK_SECRET_KEY", "PAYSTACK_PUBLIC_KEY"} {
		if os.Getenv(key) == "" {
			log.Fatalf("%s environment variable not set", key)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // base64 thumbnails come through JSON
	})

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(middleware.RateLimitMiddleware())

	if err := utils.InitStorage(); err != nil {
		log.Fatal("failed to initialize storage client:", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
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
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	paystack := services.NewPaystackClient("https://api.paystack.co", os.Getenv("PAYSTACK_SECRET_KEY"))
	publicKey := os.Getenv("PAYSTACK_PUBLIC_KEY")
	webhookSecret := os.Getenv("PAYSTACK_SECRET_KEY")

	authService := services.NewAuthService(db)
	paymentService := services.NewPaymentService(db, paystack, publicKey, webhookSecret)
	walletService := services.NewWalletService(db)
	taskService := services.NewTaskService(db)
	courseService := services.NewCourseService(db, publicKey)
	adminService := services.NewAdminService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paymentService.StartReconcileScheduler()

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupPaymentRoutes(app, paymentService)
	handlers.SetupWalletRoutes(app, walletService, db)
	handlers.SetupTaskRoutes(app, taskService, db)
	handlers.SetupCourseRoutes(app, courseService, db)
	handlers.SetupAdminRoutes(app, adminService, db)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Payment reconcile sweeper running (every 5m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
