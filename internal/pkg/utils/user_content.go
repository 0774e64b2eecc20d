package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
)

// ContextUserIDKey 鉴权中间件写入 uid 的 key
const ContextUserIDKey = "userID"

// GetUserIDFromContext 从 Gin 上下文中获取用户 uid
// 如果获取失败，会中止请求并返回 401
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	uid := OptionalUserID(c)
	if uid == "" {
		xerr.AbortWithError(c, http.StatusUnauthorized, xerr.UnauthorizedCode, "Authentication required")
		return "", false
	}
	return uid, true
}

// OptionalUserID 匿名访问时返回空字符串
func OptionalUserID(c *gin.Context) string {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return ""
	}
	uid, _ := v.(string)
	return uid
}
