package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"headta/backend/pkg/redis"
	"headta/backend/pkg/response"
)

// RateLimit 按 (客户端 IP, 路由模板) 计数的 Redis 滑动窗口限流
//
//	用于无需登录的邀请校验/接受接口，防止邀请码被枚举。
//	rdb 为 nil（Redis 未连接）或 Redis 出错时放行，错误交给访问日志记录
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("headta:ratelimit:%s:%s", c.FullPath(), c.ClientIP())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			_ = c.Error(fmt.Errorf("rate limit check: %w", err))
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", retryAfter)
			response.Error(c, http.StatusTooManyRequests, 10004, "too many requests, please retry later")
			c.Abort()
			return
		}

		c.Next()
	}
}
