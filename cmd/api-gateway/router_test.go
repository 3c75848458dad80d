package main

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-sync-api/internal/handler"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/pkg/config"
	"github.com/noah-isme/attendance-sync-api/pkg/idtoken"
)

type usersStub struct{}

func (usersStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (usersStub) FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (usersStub) Upsert(ctx context.Context, user *models.User) (bool, error) { return false, nil }

func (usersStub) UpdateProfile(ctx context.Context, user *models.User) error { return nil }

func testRouter(t *testing.T) (*gin.Engine, *idtoken.HMACVerifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	verifier, err := idtoken.NewHMACVerifier("secret")
	require.NoError(t, err)

	cfg := &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api"}
	r := newRouter(cfg, zap.NewNop(), routerDeps{
		verifier: verifier,
		users:    usersStub{},
		health:   handler.NewHealthHandler(nil, nil, nil),
		auth:     handler.NewAuthHandler(nil),
		profile:  handler.NewProfileHandler(nil),
		course:   handler.NewCourseHandler(nil),
		session:  handler.NewSessionHandler(nil),
		student:  handler.NewStudentHandler(nil),
		sync:     handler.NewSyncHandler(nil),
	})
	return r, verifier
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	r, verifier := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sync/pull", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := verifier.Issue(idtoken.Identity{Subject: "uid-1"}, time.Hour)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sync/pull?cursor=c1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cursor":"c1"`)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/courses/my-courses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
