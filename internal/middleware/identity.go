package middleware

import (
	"strconv"

	"Gather_Events/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ContextIdentityKey = "identity"

	// 预览模式的两个 cookie：布尔开关 + 可选目标账号 id。
	// 关掉开关立即恢复真实身份，preview_as 残留与否无所谓。
	PreviewOnCookie = "preview_on"
	PreviewAsCookie = "preview_as"

	// cookie 有效期约 24h，全站路径
	PreviewCookieMaxAge = 24 * 60 * 60
	PreviewCookiePath   = "/"
)

// IdentityMiddleware 每个请求重建一次有效身份，结果只在本请求内复用。
// cookie 是非加密的信任边界，正确性全靠解析时回表重查真实账号的角色，
// 任何缓存或信任客户端状态的做法都会重新打开提权口子。
func IdentityMiddleware(identitySvc *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var realUserID uint64
		if v, ok := c.Get(ContextUserIDKey); ok {
			realUserID = v.(uint64)
		}

		previewOn := false
		if v, err := c.Cookie(PreviewOnCookie); err == nil && v == "1" {
			previewOn = true
		}

		var targetID uint64
		if v, err := c.Cookie(PreviewAsCookie); err == nil {
			targetID, _ = strconv.ParseUint(v, 10, 64)
		}

		ident := identitySvc.ResolveEffectiveIdentity(c.Request.Context(), realUserID, previewOn, targetID)
		if ident != nil {
			c.Set(ContextIdentityKey, ident)
		}
		c.Next()
	}
}

// Identity 从请求上下文取有效身份，匿名返回 nil
func Identity(c *gin.Context) *service.EffectiveIdentity {
	if v, ok := c.Get(ContextIdentityKey); ok {
		return v.(*service.EffectiveIdentity)
	}
	return nil
}
