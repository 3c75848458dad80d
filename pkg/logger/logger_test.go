package logger

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/attendance-sync-api/pkg/config"
	"github.com/noah-isme/attendance-sync-api/pkg/middleware/requestid"
)

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	cfg := &config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "debug", Format: "json", File: path, MaxSizeMB: 1}}

	l, err := New(cfg)
	require.NoError(t, err)
	l.Info("booted", zap.String("component", "test"))
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"booted"`)
	assert.Contains(t, string(raw), `"timestamp"`)
}

func TestNewFallsBackOnBadLevel(t *testing.T) {
	l, err := New(&config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Level: "loud", Format: "console"}})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestGinMiddlewareLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(requestid.Middleware(), GinMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
}
