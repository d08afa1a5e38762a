package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/verimodel/desktop/internal/bridge/commands"
)

// Invoker runs a registered command by name.
type Invoker interface {
	Invoke(ctx context.Context, name string) (any, error)
}

// InvokeResponse carries either a result or the command's error string, the
// same shape a Result<T, String> takes on the front end.
type InvokeResponse struct {
	ID      string `json:"id"`
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

type InvokeHandler struct {
	invoker Invoker
}

func NewInvokeHandler(invoker Invoker) *InvokeHandler {
	return &InvokeHandler{invoker: invoker}
}

// Invoke runs a bridge command
//
//	@Summary		Invoke a bridge command
//	@Description	Runs the named command and returns its result. Command errors are returned with ok=false and HTTP 200.
//	@Tags			invoke
//	@Produce		json
//	@Security		APIToken
//	@Param			command	path		string	true	"command name"
//	@Success		200		{object}	InvokeResponse
//	@Failure		400		{object}	BridgeError
//	@Failure		404		{object}	BridgeError
//	@Router			/v1/invoke/{command} [post]
func (h *InvokeHandler) Invoke(ctx *gin.Context) {
	name := ctx.Param("command")
	if err := commands.ValidateName(name); err != nil {
		AbortWithError(ctx, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}
	id := uuid.NewString()

	result, err := h.invoker.Invoke(ctx.Request.Context(), name)
	if errors.Is(err, commands.ErrUnknown) {
		AbortWithError(ctx, http.StatusNotFound, ErrCodeUnknownCommand, err)
		return
	}

	resp := &InvokeResponse{
		ID:      id,
		Command: name,
	}
	if err != nil {
		slog.Warn("bridge command failed", "id", id, "command", name, "error", err)
		resp.Error = err.Error()
	} else {
		resp.OK = true
		resp.Result = result
	}

	ctx.PureJSON(http.StatusOK, resp)
}
