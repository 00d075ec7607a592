package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/strawhatacademy/academy-api/api/swagger"
	"github.com/strawhatacademy/academy-api/internal/handler"
	"github.com/strawhatacademy/academy-api/internal/middleware"
	"github.com/strawhatacademy/academy-api/internal/models"
	"github.com/strawhatacademy/academy-api/internal/repository"
	"github.com/strawhatacademy/academy-api/internal/service"
	"github.com/strawhatacademy/academy-api/pkg/cache"
	"github.com/strawhatacademy/academy-api/pkg/config"
	"github.com/strawhatacademy/academy-api/pkg/database"
	"github.com/strawhatacademy/academy-api/pkg/logger"
	corsmiddleware "github.com/strawhatacademy/academy-api/pkg/middleware/cors"
	reqidmiddleware "github.com/strawhatacademy/academy-api/pkg/middleware/requestid"
)

// @title Academy Records API
// @version 1.0.0
// @description Academic record keeping: users, subjects, grades and enrollment
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

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			redisClient = client
			defer client.Close()
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	subjectSvc := service.NewSubjectService(subjectRepo, userRepo, cacheRepo, cfg.Cache.SubjectTTL, metricsSvc, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, userRepo, validate, logr)
	reportSvc := service.NewReportService(gradeSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/subjects", subjectHandler.List)
	authed.POST("/subjects", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), subjectHandler.Create)
	authed.DELETE("/subjects/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), subjectHandler.Delete)
	authed.POST("/subjects/:id/enroll", middleware.RequireRoles(models.RoleStudent), subjectHandler.Enroll)

	authed.GET("/teachers/:id/subjects", middleware.RBAC(string(models.RoleAdmin), "SELF"), subjectHandler.TeacherSubjects)
	authed.GET("/teachers/:id/grades", middleware.RBAC(string(models.RoleAdmin), "SELF"), gradeHandler.TeacherGrades)

	authed.GET("/students/:id/grades", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), "SELF"), gradeHandler.StudentGrades)
	authed.GET("/students/:id/report", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), "SELF"), reportHandler.Export)

	authed.POST("/grades", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), gradeHandler.Create)
	authed.GET("/grades/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), gradeHandler.Get)
	authed.PUT("/grades/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), gradeHandler.Update)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
