package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// the front end runs from a webview or a browser tab with an arbitrary origin
var corsConfig = cors.Config{
	AllowAllOrigins: true,
	AllowMethods:    []string{"GET", "POST", "OPTIONS"},
	AllowHeaders: []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	},
	MaxAge: 12 * time.Hour,
}

func CORS() gin.HandlerFunc {
	return cors.New(corsConfig)
}
