package handler

import (
	"net/http"
	"strconv"

	"Gather_Events/internal/middleware"
	"Gather_Events/internal/pkg"
	"Gather_Events/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	svc *service.ProfileService
}

func NewAdminHandler(svc *service.ProfileService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// ListProfiles 账号列表。鉴权在服务层按真实账号做，这里只传 user_id
func (h *AdminHandler) ListProfiles(c *gin.Context) {
	userIDAny, ok := c.Get(middleware.ContextUserIDKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), userIDAny.(uint64))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"msg": "forbidden"})
		return
	}
	if !pkg.CanManage(profile.Role) {
		c.JSON(http.StatusForbidden, gin.H{"msg": "forbidden"})
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListProfiles(c.Request.Context(), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "list failed"})
		return
	}

	out := make([]gin.H, 0, len(list))
	for _, p := range list {
		out = append(out, gin.H{
			"id":          p.ID,
			"username":    p.Username,
			"email":       p.Email,
			"role":        p.Role,
			"referred_by": p.ReferredBy,
			"created_at":  p.CreatedAt.Unix(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"list": out})
}

// ChangeRole 改角色，服务层做 admin 严格校验（moderator 不放行）
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	userIDAny, ok := c.Get(middleware.ContextUserIDKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid profile id"})
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	if err := h.svc.ChangeRole(c.Request.Context(), userIDAny.(uint64), targetID, req.Role); err != nil {
		c.JSON(bookingStatus(err), gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
