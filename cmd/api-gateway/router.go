package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-sync-api/internal/handler"
	"github.com/noah-isme/attendance-sync-api/internal/middleware"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/internal/repository"
	"github.com/noah-isme/attendance-sync-api/internal/service"
	"github.com/noah-isme/attendance-sync-api/pkg/config"
	"github.com/noah-isme/attendance-sync-api/pkg/idtoken"
	"github.com/noah-isme/attendance-sync-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/attendance-sync-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/attendance-sync-api/pkg/middleware/requestid"
)

type routerDeps struct {
	verifier idtoken.Verifier
	users    repository.UserStore
	audit    *service.AuditService
	metrics  *service.MetricsService

	health  *handler.HealthHandler
	auth    *handler.AuthHandler
	profile *handler.ProfileHandler
	course  *handler.CourseHandler
	session *handler.SessionHandler
	student *handler.StudentHandler
	sync    *handler.SyncHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics))

	r.GET("/health", d.health.Health)
	r.GET("/ready", d.health.Ready)
	r.GET("/metrics", d.health.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authed := api.Group("")
	authed.Use(middleware.Auth(d.verifier))

	authed.POST("/auth/bootstrap", d.auth.Bootstrap)
	authed.POST("/sync/push", d.sync.Push)
	authed.GET("/sync/pull", d.sync.Pull)

	account := authed.Group("")
	account.Use(middleware.Account(d.users))

	profile := account.Group("/profile")
	profile.POST("/complete", middleware.Audit(d.audit, models.AuditActionProfileComplete, "profile"), d.profile.Complete)
	profile.GET("/info", d.profile.Info)
	profile.PATCH("/update", middleware.Audit(d.audit, models.AuditActionProfileUpdate, "profile"), d.profile.Update)

	courses := account.Group("/courses")
	courses.POST("/create", middleware.Audit(d.audit, models.AuditActionCourseCreate, "course"), d.course.Create)
	courses.GET("/my-courses", d.course.Mine)
	courses.PATCH("/:id", middleware.Audit(d.audit, models.AuditActionCourseUpdate, "course"), d.course.Update)
	courses.DELETE("/:id", middleware.Audit(d.audit, models.AuditActionCourseDelete, "course"), d.course.Delete)
	courses.GET("/:id/sessions", d.course.Sessions)
	courses.GET("/:id/students", d.course.Students)

	sessions := account.Group("/sessions")
	sessions.POST("/create", middleware.Audit(d.audit, models.AuditActionSessionCreate, "session"), d.session.Create)
	sessions.GET("/:id/attendance", d.session.Attendance)
	sessions.GET("/:id/attendance/export", d.session.Export)

	student := account.Group("/student")
	student.GET("/my-courses", d.student.Courses)
	student.GET("/my-sessions", d.student.Sessions)
	student.POST("/enroll", middleware.Audit(d.audit, models.AuditActionEnroll, "enrollment"), d.student.Enroll)

	return r
}
