package handler

import (
	"net/http"
	"strconv"

	"Gather_Events/internal/middleware"
	"Gather_Events/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	svc *service.MessageService
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// Send 用户发消息：不选收件人，路由到客服账号
func (h *MessageHandler) Send(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	if err := h.svc.SendToSupport(c.Request.Context(), middleware.Identity(c), req.Content); err != nil {
		c.JSON(bookingStatus(err), gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// Reply 客服回复指定用户
func (h *MessageHandler) Reply(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid user id"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	if err := h.svc.ReplyToUser(c.Request.Context(), middleware.Identity(c), userID, req.Content); err != nil {
		c.JSON(bookingStatus(err), gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// MyConversation 用户与客服的往来
func (h *MessageHandler) MyConversation(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := h.svc.MyConversation(c.Request.Context(), middleware.Identity(c), limit)
	if err != nil {
		c.JSON(bookingStatus(err), gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": list})
}

// Inbox 客服收件箱，按对端分组
func (h *MessageHandler) Inbox(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	convs, err := h.svc.Inbox(c.Request.Context(), middleware.Identity(c), limit)
	if err != nil {
		c.JSON(bookingStatus(err), gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// MarkRead 标记已读
func (h *MessageHandler) MarkRead(c *gin.Context) {
	messageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || messageID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid message id"})
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), middleware.Identity(c), messageID); err != nil {
		c.JSON(bookingStatus(err), gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// UnreadCount 未读数
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	count, err := h.svc.UnreadCount(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		c.JSON(bookingStatus(err), gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
