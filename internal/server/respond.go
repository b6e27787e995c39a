package server

import (
	"net/http"
	"strconv"

	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail 统一错误输出: {"code", "error", "errors"}
func fail(c *gin.Context, err error) {
	cm := apperrors.From(err)
	status := cm.HTTPStatus()

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Basic realm="press"`)
	}

	body := gin.H{"code": cm.Code, "error": cm.Msg}
	if len(cm.Fields) > 0 {
		body["errors"] = cm.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// paramID 非法 id 按不存在处理
func paramID(c *gin.Context, what string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NotFound(what)
	}
	return id, nil
}
