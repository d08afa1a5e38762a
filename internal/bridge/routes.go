package bridge

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verimodel/desktop/internal/bridge/commands"
	"github.com/verimodel/desktop/internal/bridge/handlers"
	"github.com/verimodel/desktop/internal/bridge/middleware"
	"github.com/verimodel/desktop/internal/version"
)

type RouteConfig struct {
	Auth       middleware.TokenAuthConfig
	RateLimit  int64
	StartedAt  time.Time
	BackendURL string
}

func SetupRoutes(cmds *commands.Registry, checker handlers.BackendChecker, routeConfig *RouteConfig) http.Handler {
	r := gin.New()

	statusH := handlers.NewStatusHandler(routeConfig.StartedAt, routeConfig.BackendURL, cmds)
	invokeH := handlers.NewInvokeHandler(cmds)
	backendH := handlers.NewBackendHandler(checker)

	r.Use(gin.CustomRecovery(handlers.Recovery))
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.Gzip())
	if routeConfig.RateLimit > 0 {
		r.Use(middleware.RateLimit(routeConfig.RateLimit))
	}

	r.GET("/", IndexHandler)
	r.GET("/health", handlers.Health)

	v1 := r.Group("/v1")
	v1.Use(middleware.TokenAuth(routeConfig.Auth))
	{
		v1.GET("/status", statusH.Status)
		v1.POST("/invoke/:command", invokeH.Invoke)
		v1.GET("/backend/health", backendH.Health)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

func IndexHandler(c *gin.Context) {
	c.JSON(http.StatusOK, version.DetailedWithApp())
}
