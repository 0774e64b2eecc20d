package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/internal/config"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/utils"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	// Token 格式通常是 "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// AuthMiddleware 要求请求携带有效 token，并把 subject 作为 uid 写入上下文
func AuthMiddleware(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			xerr.AbortWithError(c, http.StatusUnauthorized, xerr.UnauthorizedCode, "Authorization header is required")
			return
		}

		claims, err := utils.ParseToken(tokenString, cfg.SecretKey, cfg.Issuer)
		if err != nil {
			logger.Debug("AuthMiddleware: token 校验失败", zap.Error(err))
			xerr.AbortWithError(c, http.StatusUnauthorized, xerr.TokenInvalidCode, xerr.ErrTokenInvalid.Error())
			return
		}

		c.Set(utils.ContextUserIDKey, claims.Subject)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// OptionalAuth 有合法 token 时写入 uid，没有或无效时按匿名访客处理
func OptionalAuth(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := utils.ParseToken(tokenString, cfg.SecretKey, cfg.Issuer); err == nil {
				c.Set(utils.ContextUserIDKey, claims.Subject)
				c.Set("email", claims.Email)
			}
		}
		c.Next()
	}
}
