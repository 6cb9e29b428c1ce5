package handler

import (
	"net/http"
	"strconv"

	"Gather_Events/internal/middleware"
	"Gather_Events/internal/pkg"
	"Gather_Events/internal/service"

	"github.com/gin-gonic/gin"
)

// PreviewHandler 管理预览模式的两个 cookie。
// cookie 只是开关，真正的权限判定在每次请求的身份解析里回表重查，
// 这里的检查只是避免给无权限账号种下无效 cookie。
type PreviewHandler struct {
	svc *service.ProfileService
}

func NewPreviewHandler(svc *service.ProfileService) *PreviewHandler {
	return &PreviewHandler{svc: svc}
}

// Enable 开启预览：可选指定目标账号，不指定则以通用访客视角浏览
func (h *PreviewHandler) Enable(c *gin.Context) {
	userIDAny, ok := c.Get(middleware.ContextUserIDKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), userIDAny.(uint64))
	if err != nil || !pkg.CanManage(profile.Role) {
		c.JSON(http.StatusForbidden, gin.H{"msg": "forbidden"})
		return
	}

	var req struct {
		TargetID uint64 `json:"target_id"`
	}
	_ = c.ShouldBindJSON(&req)

	c.SetCookie(middleware.PreviewOnCookie, "1",
		middleware.PreviewCookieMaxAge, middleware.PreviewCookiePath, "", false, true)
	if req.TargetID > 0 {
		c.SetCookie(middleware.PreviewAsCookie, strconv.FormatUint(req.TargetID, 10),
			middleware.PreviewCookieMaxAge, middleware.PreviewCookiePath, "", false, true)
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// Disable 关闭预览：清掉两个 cookie，立刻恢复真实身份
func (h *PreviewHandler) Disable(c *gin.Context) {
	c.SetCookie(middleware.PreviewOnCookie, "",
		-1, middleware.PreviewCookiePath, "", false, true)
	c.SetCookie(middleware.PreviewAsCookie, "",
		-1, middleware.PreviewCookiePath, "", false, true)

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
