package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/attendance-sync-api/api/swagger"
	"github.com/noah-isme/attendance-sync-api/internal/handler"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/internal/repository"
	"github.com/noah-isme/attendance-sync-api/internal/service"
	"github.com/noah-isme/attendance-sync-api/pkg/cache"
	"github.com/noah-isme/attendance-sync-api/pkg/config"
	"github.com/noah-isme/attendance-sync-api/pkg/database"
	"github.com/noah-isme/attendance-sync-api/pkg/idtoken"
	"github.com/noah-isme/attendance-sync-api/pkg/logger"
)

// @title Attendance Sync API
// @version 1.0.0
// @description Classroom attendance backend with offline sync for mobile clients
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	var redisClient redis.UniversalClient
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer client.Close() //nolint:errcheck
		redisClient = client
	}

	verifier, err := newVerifier(cfg.Auth)
	if err != nil {
		logr.Fatal("failed to init token verifier", zap.Error(err))
	}

	store := repository.NewStore(db)
	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheSvc *service.CacheService
	readiness := map[string]handler.Pinger{"postgres": store}
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, true)
		readiness["redis"] = cacheRepo
	}

	auditSvc := service.NewAuditService(store.Audit(), service.AuditConfig{
		Workers:    cfg.Audit.Workers,
		MaxRetries: cfg.Audit.MaxRetries,
	}, logr)
	auditSvc.Start(context.Background())

	policy := models.DefaultPolicy()
	policy.UnknownOps = models.UnknownOpBehavior(cfg.Sync.UnknownOps)

	deps := routerDeps{
		verifier: verifier,
		users:    store.Users(),
		audit:    auditSvc,
		metrics:  metrics,
		health:   handler.NewHealthHandler(metrics, readiness, logr),
		auth:     handler.NewAuthHandler(service.NewIdentityService(store.Users(), policy, logr)),
		profile:  handler.NewProfileHandler(service.NewProfileService(store, validate, cacheSvc, logr)),
		course:   handler.NewCourseHandler(service.NewCourseService(store, validate, logr)),
		session:  handler.NewSessionHandler(service.NewSessionService(store, validate, logr)),
		student:  handler.NewStudentHandler(service.NewStudentService(store, validate, cacheSvc, cfg.Cache.TTL, logr)),
		sync: handler.NewSyncHandler(service.NewSyncService(store, policy, cfg.Sync.MaxOps, logr,
			service.WithSyncMetrics(metrics),
			service.WithSyncAudit(auditSvc),
			service.WithSyncCache(cacheSvc),
		)),
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, logr, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "auth_mode", cfg.Auth.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	auditSvc.Stop(shutdownCtx)
}

func newVerifier(cfg config.AuthConfig) (idtoken.Verifier, error) {
	switch cfg.Mode {
	case config.AuthModeHS256:
		return idtoken.NewHMACVerifier(cfg.JWTSecret)
	default:
		return idtoken.NewFirebaseVerifier(idtoken.FirebaseConfig{
			ProjectID:  cfg.FirebaseProjectID,
			CertsURL:   cfg.FirebaseCertsURL,
			HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		})
	}
}
