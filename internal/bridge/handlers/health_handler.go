package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse reports liveness of the shell itself, not of the backend.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"ts"`
}

// Health answers GET /health without authentication.
//
//	@Summary	Shell liveness
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health [get]
func Health(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, &HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
