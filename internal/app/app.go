package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caterconnect_backend/database"
	"caterconnect_backend/internal/auth"
	"caterconnect_backend/internal/config"
	"caterconnect_backend/internal/handlers"
	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/metrics"
	"caterconnect_backend/internal/middleware"
	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/internal/routes"
	"caterconnect_backend/internal/services"
	"caterconnect_backend/internal/services/subscription"
	"caterconnect_backend/internal/validator"
	"caterconnect_backend/internal/workers"
	"caterconnect_backend/pkg/apperrors"
	"caterconnect_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Application - собранное приложение: роутер, сервисы, ws и фоновые задачи
type Application struct {
	Router    *gin.Engine
	Services  *services.ServiceContainer
	WSManager *ws.WebSocketManager
	Reminder  *workers.ReminderWorker
	Expiry    *workers.SubscriptionWorker
}

func Run() {
	if err := config.LoadConfig(); err != nil {
		logger.Init("production")
		logger.Fatal("Failed to load config", "error", err)
	}
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	apperrors.SetDebug(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			logger.Fatal("Failed to migrate database", "error", err)
		}
		logger.Info("Database migrated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway := subscription.NewRazorpayService(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL)
	application := Build(cfg, gormDB, gateway)

	go application.WSManager.Run(ctx)

	var scheduler *workers.Scheduler
	if cfg.Workers.Enabled {
		scheduler = workers.NewScheduler()
		if err := scheduler.Add(cfg.Workers.ReminderSchedule, application.Reminder); err != nil {
			logger.Fatal("Failed to schedule worker", "error", err)
		}
		if err := scheduler.Add(cfg.Workers.ExpirySchedule, application.Expiry); err != nil {
			logger.Fatal("Failed to schedule worker", "error", err)
		}
		scheduler.Start(ctx)
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if scheduler != nil {
		scheduler.Wait()
	}
	if err := database.Close(gormDB); err != nil {
		logger.Error("Failed to close database", "error", err)
	}
	logger.Info("Server stopped")
}

// Build собирает репозитории, сервисы, хэндлеры и роутер
func Build(cfg *config.Config, gormDB *gorm.DB, gateway services.PaymentGateway) *Application {
	wsManager := ws.NewWebSocketManager()

	// 1. Сервисы
	serviceContainer, repos := initializeServices(cfg, gateway, wsManager)

	// 2. Хэндлеры
	verifier := auth.NewVerifier(auth.SupabaseConfig{
		URL:       cfg.Supabase.URL,
		AnonKey:   cfg.Supabase.AnonKey,
		JWTSecret: cfg.Supabase.JWTSecret,
	})
	authMiddleware := middleware.AuthMiddleware(verifier)

	reminder := workers.NewReminderWorker(gormDB, repos.applications, repos.notifications, serviceContainer.NotificationService)
	expiry := workers.NewSubscriptionWorker(gormDB, repos.users)

	appHandlers := initializeHandlers(cfg, serviceContainer, authMiddleware, repos.users, reminder)

	// 3. WebSocket
	wsHandler := ws.NewWebSocketHandler(wsManager, cfg.Server.CORSOrigins)

	// 4. Gin
	ginRouter := initializeGinRouter(cfg, gormDB)

	// 5. Маршруты
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, authMiddleware)

	return &Application{
		Router:    ginRouter,
		Services:  serviceContainer,
		WSManager: wsManager,
		Reminder:  reminder,
		Expiry:    expiry,
	}
}

// SetupRouter - только роутер, без фоновых задач
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, gateway services.PaymentGateway) *gin.Engine {
	return Build(cfg, gormDB, gateway).Router
}

type repositorySet struct {
	users         repositories.UserRepository
	applications  repositories.ApplicationRepository
	notifications repositories.NotificationRepository
}

func initializeServices(cfg *config.Config, gateway services.PaymentGateway, publisher services.Publisher) (*services.ServiceContainer, repositorySet) {
	// --- Репозитории ---
	userRepo := repositories.NewUserRepository()
	jobRepo := repositories.NewJobRepository()
	applicationRepo := repositories.NewApplicationRepository()
	ratingRepo := repositories.NewRatingRepository()
	notificationRepo := repositories.NewNotificationRepository()
	paymentRepo := repositories.NewPaymentRepository()

	// --- Сервисы ---
	notificationService := services.NewNotificationService(notificationRepo, publisher)
	userService := services.NewUserService(userRepo, notificationService)
	jobService := services.NewJobService(jobRepo, userRepo)
	applicationService := services.NewApplicationService(applicationRepo, jobRepo, userRepo, notificationService)
	ratingService := services.NewRatingService(ratingRepo, jobRepo, userRepo, applicationRepo, notificationService)
	subscriptionService := services.NewSubscriptionService(
		userRepo,
		paymentRepo,
		gateway,
		notificationService,
		cfg.Razorpay.ProAmount,
		cfg.Razorpay.Currency,
	)
	publicService := services.NewPublicService(jobRepo, userRepo)

	return &services.ServiceContainer{
			UserService:         userService,
			JobService:          jobService,
			ApplicationService:  applicationService,
			RatingService:       ratingService,
			NotificationService: notificationService,
			SubscriptionService: subscriptionService,
			PublicService:       publicService,
		}, repositorySet{
			users:         userRepo,
			applications:  applicationRepo,
			notifications: notificationRepo,
		}
}

func initializeHandlers(
	cfg *config.Config,
	services *services.ServiceContainer,
	authMiddleware gin.HandlerFunc,
	userRepo repositories.UserRepository,
	reminder *workers.ReminderWorker,
) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator, authMiddleware, userRepo)

	runReminders := func(ctx context.Context) (int64, error) {
		return workers.Run(ctx, reminder)
	}

	return &handlers.AppHandlers{
		UserHandler:         handlers.NewUserHandler(baseHandler, services.UserService),
		JobHandler:          handlers.NewJobHandler(baseHandler, services.JobService, services.ApplicationService),
		ApplicationHandler:  handlers.NewApplicationHandler(baseHandler, services.ApplicationService),
		RatingHandler:       handlers.NewRatingHandler(baseHandler, services.RatingService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, services.NotificationService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, services.SubscriptionService),
		PublicHandler:       handlers.NewPublicHandler(baseHandler, services.PublicService),
		CronHandler:         handlers.NewCronHandler(baseHandler, cfg.Workers.CronSecret, runReminders),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.GinMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}
