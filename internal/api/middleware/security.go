package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// calendarCacheControl 日历订阅客户端定期轮询 .ics，允许私有缓存一小时
const calendarCacheControl = "private, max-age=3600"

// SecurityHeaders 安全响应头
//
//	API 只返回 JSON 与文件下载，CSP 一律拒绝；除学期日历外均禁止缓存
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if strings.HasSuffix(c.FullPath(), "/calendar.ics") {
			c.Header("Cache-Control", calendarCacheControl)
		} else {
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}
