package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sia-validation-api/api/swagger"
	"github.com/noah-isme/sia-validation-api/internal/handler"
	"github.com/noah-isme/sia-validation-api/internal/middleware"
	"github.com/noah-isme/sia-validation-api/internal/models"
	"github.com/noah-isme/sia-validation-api/internal/repository"
	"github.com/noah-isme/sia-validation-api/internal/service"
	"github.com/noah-isme/sia-validation-api/pkg/cache"
	"github.com/noah-isme/sia-validation-api/pkg/config"
	"github.com/noah-isme/sia-validation-api/pkg/database"
	"github.com/noah-isme/sia-validation-api/pkg/jobs"
	"github.com/noah-isme/sia-validation-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sia-validation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sia-validation-api/pkg/middleware/requestid"
	"github.com/noah-isme/sia-validation-api/pkg/storage"
)

// @title SIA Validation API
// @version 1.0.0
// @description Record validation guard, rejection ledger and official record promotion service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, summaries will not be cached", "error", err)
		redisClient = nil
	}

	metrics := service.NewMetricsService()

	// Repositories.
	studentRecords := repository.NewStudentRecordRepository(db)
	references := repository.NewReferenceRepository(db)
	invalidRecords := repository.NewInvalidRecordRepository(db)
	actionLogs := repository.NewActionLogRepository(db)
	users := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	authSvc := service.NewAuthService(users, nil, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	actionLogSvc := service.NewActionLogService(actionLogs, logr)
	invalidRecordSvc := service.NewInvalidRecordService(invalidRecords, cacheRepo, metrics, cfg.Validation.SummaryCacheTTL, logr)
	guardSvc := service.NewValidationGuardService(references, metrics, cfg.Validation.MaxScore, cfg.Validation.GradeLetters, logr)
	fieldSvc := service.NewStudentFieldValidationService(
		service.RequiredFieldsFromNames(cfg.Validation.RequiredStudentFields), actionLogSvc, logr)
	officialSvc := service.NewOfficialRecordService(studentRecords, actionLogSvc, metrics, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	validationHandler := handler.NewValidationHandler(guardSvc, invalidRecordSvc, fieldSvc)
	officialHandler := handler.NewOfficialRecordHandler(officialSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	validations := protected.Group("/validations")
	validations.POST("/grade", validationHandler.ValidateGrade)
	validations.POST("/attendance", validationHandler.ValidateAttendance)
	validations.POST("/report", validationHandler.ValidateReport)
	validations.POST("/students/bulk", validationHandler.ValidateStudentBatch)

	adminOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	// Export wiring is optional; ledgers stay queryable without it.
	var ledgerExporter *service.ExportService
	if cfg.Exports.Enabled {
		fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		ledgerExporter = service.NewExportService(invalidRecords, actionLogs, fileStore, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)

		exportJobs := repository.NewExportJobRepository(db)
		worker := service.NewExportWorker(exportJobs, ledgerExporter, metrics, cfg.Exports.WorkerRetries, logr)
		queue := jobs.NewQueue("ledger-exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(context.Background())
		defer queue.Stop()

		exportJobSvc := service.NewExportJobService(exportJobs, queue, ledgerExporter, metrics, logr, service.ExportJobConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exportJobSvc.RecoverPendingJobs(context.Background())
		exportJobSvc.StartCleanup(context.Background())

		exportHandler := handler.NewExportHandler(exportJobSvc)
		exports := protected.Group("/exports")
		exports.POST("", adminOnly, exportHandler.Create)
		exports.GET("/:id", exportHandler.Status)
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	invalidRecordHandler := handler.NewInvalidRecordHandler(invalidRecordSvc, ledgerExporter)
	actionLogHandler := handler.NewActionLogHandler(actionLogSvc, ledgerExporter)

	invalid := protected.Group("/invalid-records")
	invalid.GET("", invalidRecordHandler.List)
	invalid.GET("/summary", invalidRecordHandler.Summary)
	if cfg.Exports.Enabled {
		invalid.GET("/export", invalidRecordHandler.Export)
	}

	actions := protected.Group("/validation-actions")
	actions.GET("", actionLogHandler.List)
	if cfg.Exports.Enabled {
		actions.GET("/export", actionLogHandler.Export)
	}

	students := protected.Group("/student-records")
	students.POST("", officialHandler.Create)
	students.GET("", officialHandler.List)
	students.GET("/statistics", officialHandler.Statistics)
	students.GET("/:id", officialHandler.Get)
	students.POST("/official", officialHandler.BulkOfficial)
	students.POST("/:id/official", officialHandler.MarkOfficial)
	students.POST("/:id/pending", officialHandler.MarkPending)
	students.POST("/:id/reset", adminOnly, officialHandler.Reset)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
