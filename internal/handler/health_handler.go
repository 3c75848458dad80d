package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-sync-api/internal/service"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness, readiness and Prometheus endpoints.
type HealthHandler struct {
	metrics      *service.MetricsService
	dependencies map[string]Pinger
	logger       *zap.Logger
}

// NewHealthHandler constructs the handler. Nil dependencies are skipped.
func NewHealthHandler(metrics *service.MetricsService, dependencies map[string]Pinger, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := make(map[string]Pinger, len(dependencies))
	for name, p := range dependencies {
		if p != nil {
			deps[name] = p
		}
	}
	return &HealthHandler{metrics: metrics, dependencies: deps, logger: logger}
}

// Health godoc
// @Summary Liveness
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Ready godoc
// @Summary Readiness
// @Description Ping every backing dependency
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.dependencies))
	for name, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	c.JSON(status, gin.H{"ok": status == http.StatusOK, "checks": checks})
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *HealthHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
