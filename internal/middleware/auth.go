package middleware

import (
	"net/http"
	"strings"

	"Gather_Events/internal/pkg"
	"Gather_Events/internal/repository/redis"

	"github.com/gin-gonic/gin"
)

const ContextUserIDKey = "user_id"

// AuthMiddleware 必须登录的接口用：解析 access token 并和 redis 里
// 钉住的会话 token 比对，通过后注入 user_id
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization format"})
			c.Abort()
			return
		}

		tokenStr := parts[1]
		sessionRep := &redis.SessionRepository{}

		claims, err := pkg.ParseAccess(tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			c.Abort()
			return
		}

		// redis校验是否是当前会话的token
		originToken, err := sessionRep.GetToken(claims.UserID)
		if err != nil || originToken != tokenStr {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "account has been logged in elsewhere"})
			c.Abort()
			return
		}

		// 校验通过后滑动续期
		if err = sessionRep.ExtendToken(claims.UserID); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuthMiddleware 匿名可访问的读接口用：带合法 token 就注入
// user_id，没带或带错都按匿名放行
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := pkg.ParseAccess(parts[1])
		if err != nil {
			c.Next()
			return
		}

		sessionRep := &redis.SessionRepository{}
		originToken, err := sessionRep.GetToken(claims.UserID)
		if err != nil || originToken != parts[1] {
			c.Next()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}
