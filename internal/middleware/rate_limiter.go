package middleware

import (
	"fmt"
	"net/http"

	"github.com/SeakMengs/InstaPilot/internal/util"
	"github.com/gin-gonic/gin"
)

func (m Middleware) RateLimiterMiddleware(ctx *gin.Context) {
	if m.rateLimiter.Enabled() {
		allow, retryAfter := m.rateLimiter.Allow(ctx.ClientIP())
		if !allow {
			m.app.Logger.Debugf("Rate limit exceeded for ip: %s", ctx.ClientIP())

			ctx.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
			util.ResponseFailed(ctx, http.StatusTooManyRequests, "Rate limit exceeded, retry later", nil, nil)
			ctx.Abort()
			return
		}
	}

	ctx.Next()
}
