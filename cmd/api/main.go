package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"github.com/motofin/motofin-api/internal/config"
	"github.com/motofin/motofin-api/internal/database"
	"github.com/motofin/motofin-api/internal/handlers"
	"github.com/motofin/motofin-api/internal/jobs"
	"github.com/motofin/motofin-api/internal/middleware"
	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/repository"
	"github.com/motofin/motofin-api/internal/services"
	"github.com/motofin/motofin-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("Database schema up to date")

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, cfg, db)

	scheduleJobs(worker, svcs, cfg)

	h := handlers.NewHandlers(svcs)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only: staff accounts, audit trail
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/users", h.User.Index)
				admin.POST("/users", h.User.Create)
				admin.GET("/users/:user_id", h.User.Show)
				admin.PUT("/users/:user_id", h.User.Update)
				admin.PUT("/users/:user_id/toggle_status", h.User.ToggleStatus)
				admin.PATCH("/users/:user_id/reset_password", h.User.ResetPassword)

				admin.GET("/audits", h.Audit.Index)
			}

			// Manager: loan approval and lifecycle, catalogue management,
			// risk overrides, reports
			manager := protected.Group("")
			manager.Use(middleware.RequireRole(models.RoleManager))
			{
				manager.POST("/loans/:loan_id/approve", h.Loan.Approve)
				manager.POST("/loans/:loan_id/activate", h.Loan.Activate)
				manager.POST("/loans/:loan_id/complete", h.Loan.Complete)

				manager.POST("/motors", h.Inventory.CreateMotor)
				manager.PUT("/motors/:motor_id", h.Inventory.UpdateMotor)
				manager.POST("/stocks", h.Inventory.CreateStock)
				manager.POST("/stocks/:stock_id/transfer", h.Inventory.Transfer)
				manager.POST("/financing_terms", h.Inventory.CreateFinancingTerm)

				manager.POST("/loans/:loan_id/risk/evaluate", h.Risk.Evaluate)

				manager.GET("/reports/portfolio", h.Report.Portfolio)
				manager.GET("/reports/portfolio_pdf", h.Report.PortfolioPDF)
				manager.GET("/reports/collections", h.Report.Collections)
				manager.GET("/reports/loans_csv", h.Report.LoansCSV)
				manager.GET("/reports/loans_xlsx", h.Report.LoansXLSX)
				manager.GET("/reports/loans_pdf", h.Report.LoansPDF)
			}

			// Collector: repossession case work and risk views
			collector := protected.Group("")
			collector.Use(middleware.RequireRole(models.RoleManager, models.RoleCollector))
			{
				collector.GET("/repossessions", h.Repossession.Index)
				collector.GET("/repossessions/:case_id", h.Repossession.Show)
				collector.POST("/repossessions/:case_id/reminder", h.Repossession.Reminder)
				collector.POST("/repossessions/:case_id/close", h.Repossession.Close)

				collector.GET("/risk/distribution", h.Risk.Distribution)
				collector.GET("/risk/:level", h.Risk.ListByLevel)
			}

			// Cashier: intake, collections, terminal
			cashier := protected.Group("")
			cashier.Use(middleware.RequireRole(models.RoleManager, models.RoleCashier))
			{
				cashier.POST("/loans", h.Loan.Create)
				cashier.POST("/loans/:loan_id/payments", h.Payment.Create)

				cashier.POST("/pos/sessions", h.POS.OpenSession)
				cashier.GET("/pos/sessions", h.POS.IndexSessions)
				cashier.GET("/pos/sessions/:session_id", h.POS.ShowSession)
				cashier.POST("/pos/sessions/:session_id/close", h.POS.CloseSession)
				cashier.POST("/pos/sessions/:session_id/payments", h.POS.RecordPayment)
				cashier.GET("/pos/receipts/:receipt_number/pdf", h.POS.ReceiptPDF)
			}

			// All authenticated staff: read access and personal endpoints
			protected.GET("/loans", h.Loan.Index)
			protected.GET("/loans/stats", h.Loan.Stats)
			protected.GET("/loans/:loan_id", h.Loan.Show)
			protected.GET("/loans/:loan_id/schedule", h.Loan.Schedule)
			protected.GET("/loans/:loan_id/payments", h.Payment.IndexByLoan)
			protected.GET("/loans/:loan_id/risk", h.Risk.Show)

			protected.GET("/payments", h.Payment.Index)
			protected.GET("/payments/:payment_id", h.Payment.Show)

			protected.GET("/motors", h.Inventory.IndexMotors)
			protected.GET("/motors/:motor_id", h.Inventory.ShowMotor)
			protected.GET("/stocks", h.Inventory.IndexStocks)
			protected.GET("/stocks/:stock_id", h.Inventory.ShowStock)
			protected.GET("/financing_terms", h.Inventory.IndexFinancingTerms)

			protected.GET("/notifications", h.Notification.Index)
			protected.GET("/notifications/unread_count", h.Notification.UnreadCount)
			protected.PUT("/notifications/:notification_id/read", h.Notification.MarkRead)
			protected.PUT("/notifications/read_all", h.Notification.MarkAllRead)

			protected.PATCH("/users/change_password", h.User.ChangePassword)
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	// Overdue re-scan: mark schedules overdue and re-derive risk and
	// repossession state for every active loan.
	worker.ScheduleEveryImmediate(time.Duration(cfg.OverdueScanHours)*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Running overdue re-scan...")
		return svcs.Loan.RefreshAllActive(ctx)
	})

	// Daily reminder emails for installments falling due within 3 days
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Sending due-soon reminder emails...")
		return svcs.Loan.SendDueSoonReminders(ctx, 3)
	})

	logger.Info("Scheduled recurring jobs")
}
