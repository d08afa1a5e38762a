package middleware

import (
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

// SecureHeaders sets browser hardening headers. The bridge only listens on
// loopback over plain http, so no HSTS or SSL redirect.
func SecureHeaders() gin.HandlerFunc {
	return secure.New(secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		IENoOpen:           true,
		ReferrerPolicy:     "no-referrer",
	})
}
