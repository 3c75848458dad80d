package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-sync-api/internal/dto"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
	"github.com/noah-isme/attendance-sync-api/pkg/idtoken"
	"github.com/noah-isme/attendance-sync-api/pkg/response"
)

type syncService interface {
	Push(ctx context.Context, identity *idtoken.Identity, req dto.SyncPushRequest) (*dto.SyncPushResponse, error)
}

// SyncHandler exposes the offline sync endpoints.
type SyncHandler struct {
	service syncService
}

// NewSyncHandler builds a new handler.
func NewSyncHandler(service syncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// Push godoc
// @Summary Push offline operations
// @Description Apply a batch of client operations in order. Each operation commits or fails on its own and gets one result.
// @Description The response wraps {results, cursor} in the data field of the envelope.
// @Tags Sync
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SyncPushRequest true "Operations"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /sync/push [post]
func (h *SyncHandler) Push(c *gin.Context) {
	var req dto.SyncPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sync payload"))
		return
	}
	res, err := h.service.Push(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Pull godoc
// @Summary Pull server changes
// @Description Incremental pull is not implemented; the cursor is echoed with no changes.
// @Tags Sync
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Opaque cursor"
// @Success 200 {object} response.Envelope
// @Router /sync/pull [get]
func (h *SyncHandler) Pull(c *gin.Context) {
	res := dto.SyncPullResponse{Changes: map[string]interface{}{}}
	if cursor, ok := c.GetQuery("cursor"); ok {
		res.Cursor = &cursor
	}
	response.JSON(c, http.StatusOK, res)
}
