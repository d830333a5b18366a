package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edunexa/assessment-api/api/swagger"
	"github.com/edunexa/assessment-api/internal/handler"
	"github.com/edunexa/assessment-api/internal/middleware"
	"github.com/edunexa/assessment-api/internal/models"
	"github.com/edunexa/assessment-api/internal/repository"
	"github.com/edunexa/assessment-api/internal/service"
	"github.com/edunexa/assessment-api/pkg/cache"
	"github.com/edunexa/assessment-api/pkg/config"
	"github.com/edunexa/assessment-api/pkg/database"
	"github.com/edunexa/assessment-api/pkg/jobs"
	"github.com/edunexa/assessment-api/pkg/logger"
	corsmiddleware "github.com/edunexa/assessment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edunexa/assessment-api/pkg/middleware/requestid"
)

// @title Assessment Engine API
// @version 1.0.0
// @description Multi-tenant assessment, ranking and promotion engine
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	markRepo := repository.NewMarkRepository(db)
	gradeScaleRepo := repository.NewGradeScaleRepository(db)
	examRepo := repository.NewExamRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	lockRepo := repository.NewLockRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	gradeScaleSvc := service.NewGradeScaleService(gradeScaleRepo, cfg.Promotion, validate, logr)
	resultSvc := service.NewResultService(markRepo, studentRepo, gradeScaleSvc, cacheRepo, cfg.Engine.ResultCacheTTL, metricsSvc, logr)
	analyticsSvc := service.NewAnalyticsService(resultSvc, gradeScaleSvc, cacheRepo, cfg.Engine.AnalyticsCacheTTL, logr)
	examSvc := service.NewExamService(examRepo, auditRepo, logr)
	markSvc := service.NewMarkService(markRepo, examRepo, lockRepo, resultSvc, auditRepo, cfg.Engine.MarkBatchLimit, validate, logr)
	promotionSvc := service.NewPromotionService(promotionRepo, studentRepo, examRepo, resultSvc, gradeScaleSvc, lockRepo, auditRepo, metricsSvc, validate, logr)

	reaggregateQueue := jobs.NewQueue("disputes", service.NewReaggregateHandler(resultSvc, logr), jobs.QueueConfig{
		Workers:    cfg.Disputes.WorkerConcurrency,
		MaxRetries: cfg.Disputes.WorkerRetries,
		RetryDelay: cfg.Disputes.RetryDelay,
		Logger:     logr,
	})
	reaggregateQueue.Start(ctx)
	defer reaggregateQueue.Stop()

	complaintSvc := service.NewComplaintService(complaintRepo, markRepo, examRepo, resultSvc, reaggregateQueue, auditRepo, validate, logr)

	resultHandler := handler.NewResultHandler(resultSvc, examSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, metricsSvc)
	gradeScaleHandler := handler.NewGradeScaleHandler(gradeScaleSvc)
	markHandler := handler.NewMarkHandler(markSvc)
	examHandler := handler.NewExamHandler(examSvc)
	promotionHandler := handler.NewPromotionHandler(promotionSvc)
	complaintHandler := handler.NewComplaintHandler(complaintSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))

	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher)
	admin := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	anyRole := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher, models.RoleStudent, models.RoleParent)

	api.GET("/results/:examId/:classId", anyRole, resultHandler.Get)
	api.GET("/results/:examId/:classId/matrix", anyRole, resultHandler.Matrix)

	api.GET("/analytics/system", admin, analyticsHandler.System)
	api.GET("/analytics/:examId/:classId", staff, analyticsHandler.Report)

	api.GET("/grade-scale", staff, gradeScaleHandler.Get)
	api.PUT("/grade-scale", admin, gradeScaleHandler.Replace)
	api.GET("/grade-scale/classify", staff, gradeScaleHandler.Classify)
	api.GET("/promotion-policy", staff, gradeScaleHandler.GetPolicy)
	api.PUT("/promotion-policy", admin, gradeScaleHandler.UpsertPolicy)

	api.GET("/marks", staff, markHandler.List)
	api.POST("/marks", staff, markHandler.Upsert)
	api.POST("/marks/bulk", staff, markHandler.Bulk)

	api.GET("/exams/:examId", staff, examHandler.Get)
	api.POST("/exams/:examId/approve", admin, examHandler.Approve)

	api.POST("/promotions/manual", admin, promotionHandler.Manual)
	api.POST("/promotions/auto", admin, promotionHandler.Auto)
	api.GET("/promotions/runs/:runId", staff, promotionHandler.GetRun)

	api.POST("/complaints", anyRole, complaintHandler.Create)
	api.GET("/complaints", staff, complaintHandler.List)
	api.GET("/complaints/:complaintId", staff, complaintHandler.Get)
	api.POST("/complaints/:complaintId/resolve", admin, complaintHandler.Resolve)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
