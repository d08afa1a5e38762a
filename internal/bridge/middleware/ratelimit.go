package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit allows perSecond requests per client IP, held in memory.
func RateLimit(perSecond int64) gin.HandlerFunc {
	store := memory.NewStore()
	rl := limiter.New(store, limiter.Rate{
		Period: 1 * time.Second,
		Limit:  perSecond,
	})
	return mgin.NewMiddleware(rl)
}
