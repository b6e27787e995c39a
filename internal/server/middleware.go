package server

import (
	"time"

	"github.com/iceymoss/go-press/internal/auth"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 富文本编辑器依赖 inline 脚本和 blob 图片
const contentSecurityPolicy = "default-src 'self' http: https: data: blob:; " +
	"script-src 'self' 'unsafe-inline' 'unsafe-eval' http: https: data:; " +
	"style-src 'self' 'unsafe-inline' http: https: data:; " +
	"img-src 'self' data: blob: http: https:; " +
	"font-src 'self' data: http: https:; " +
	"connect-src 'self' http: https:;"

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", contentSecurityPolicy)
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if id := auth.FromContext(c.Request.Context()); id != nil {
			fields = append(fields, zap.Uint64("user_id", id.ID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.Debug("http request", fields...)
	}
}

// identify 解析 Basic 认证头；没有认证头时以游客身份继续
func identify(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Next()
			return
		}
		id, err := authn.Authenticate(c.Request.Context(), email, password)
		if err != nil {
			fail(c, err)
			return
		}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// requireLogin 后台路由必须登录，权限细分交给 service
func requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.FromContext(c.Request.Context()) == nil {
			fail(c, apperrors.Unauthenticated())
			return
		}
		c.Next()
	}
}

func identity(c *gin.Context) *auth.Identity {
	return auth.FromContext(c.Request.Context())
}
