package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verimodel/desktop/internal/version"
)

// CommandLister is satisfied by the bridge command registry.
type CommandLister interface {
	Names() []string
}

// StatusResponse describes the running shell.
type StatusResponse struct {
	Status     string   `json:"status"`
	Timestamp  string   `json:"ts"`
	Version    string   `json:"version"`
	Revision   string   `json:"revision"`
	BuildDate  string   `json:"buildDate"`
	StartedAt  string   `json:"startedAt"`
	BackendURL string   `json:"backendUrl"`
	Commands   []string `json:"commands"`
}

// StatusHandler handles GET /v1/status
type StatusHandler struct {
	startedAt  time.Time
	backendURL string
	cmds       CommandLister
}

func NewStatusHandler(startedAt time.Time, backendURL string, cmds CommandLister) *StatusHandler {
	return &StatusHandler{
		startedAt:  startedAt,
		backendURL: backendURL,
		cmds:       cmds,
	}
}

// Status returns build and runtime details of the shell
//
//	@Summary	Get shell status
//	@Tags		status
//	@Produce	json
//	@Security	APIToken
//	@Success	200	{object}	StatusResponse
//	@Router		/v1/status [get]
func (h *StatusHandler) Status(ctx *gin.Context) {
	var names []string
	if h.cmds != nil {
		names = h.cmds.Names()
	}
	if names == nil {
		names = []string{}
	}

	ctx.PureJSON(http.StatusOK, &StatusResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Version:    version.Version,
		Revision:   version.Revision,
		BuildDate:  version.BuildDate,
		StartedAt:  h.startedAt.UTC().Format(time.RFC3339),
		BackendURL: h.backendURL,
		Commands:   names,
	})
}
