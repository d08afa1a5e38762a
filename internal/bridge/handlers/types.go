package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ErrCodeBadRequest     string = "ERR_BAD_REQUEST"
	ErrCodeUnknownCommand string = "ERR_UNKNOWN_COMMAND"
	ErrCodeUnknownError   string = "ERR_UNKNOWN_ERROR"
)

// BridgeError is the body of every non-2xx bridge response.
type BridgeError struct {
	ErrorCode string `json:"code"`
	Error     string `json:"error"`
}

func AbortWithError(c *gin.Context, status int, code string, err error) {
	c.Abort()
	c.Error(err)
	c.PureJSON(status, BridgeError{
		ErrorCode: code,
		Error:     err.Error(),
	})
}

// Recovery turns a handler panic into a 500 BridgeError.
func Recovery(c *gin.Context, recovered any) {
	slog.Error("bridge panic", "path", c.Request.URL.Path, "panic", recovered)
	AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, fmt.Errorf("internal error: %v", recovered))
}
