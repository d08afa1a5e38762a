package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verimodel/desktop/internal/backend"
)

// BackendChecker probes the backend once per call.
type BackendChecker interface {
	Check(ctx context.Context) backend.Result
}

type BackendHandler struct {
	checker BackendChecker
}

func NewBackendHandler(checker BackendChecker) *BackendHandler {
	return &BackendHandler{checker: checker}
}

// Health probes the backend and returns the full result, including the
// failure reason and the backend's component report when available.
//
//	@Summary	Probe backend health
//	@Tags		backend
//	@Produce	json
//	@Security	APIToken
//	@Success	200	{object}	backend.Result
//	@Router		/v1/backend/health [get]
func (h *BackendHandler) Health(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, h.checker.Check(ctx.Request.Context()))
}
