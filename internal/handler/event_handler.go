package handler

import (
	"net/http"
	"strconv"
	"time"

	"Gather_Events/internal/middleware"
	"Gather_Events/internal/model"
	"Gather_Events/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	svc *service.EventService
}

type EventCreateReq struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Location    string `json:"location" binding:"max=255"`
	StartTime   int64  `json:"start_time" binding:"required"` // unix 秒
	MinRole     string `json:"min_role"`
}

func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListEvents(c.Request.Context(), middleware.Identity(c), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *EventHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid event id"})
		return
	}

	event, err := h.svc.GetEvent(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		c.JSON(bookingStatus(err), gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          event.ID,
		"title":       event.Title,
		"description": event.Description,
		"location":    event.Location,
		"start_time":  event.StartTime.Unix(),
		"min_role":    event.MinRole,
	})
}

func (h *EventHandler) Create(c *gin.Context) {
	var req EventCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	event := &model.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   time.Unix(req.StartTime, 0),
		MinRole:     req.MinRole,
	}
	if err := h.svc.CreateEvent(c.Request.Context(), middleware.Identity(c), event); err != nil {
		c.JSON(bookingStatus(err), gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": event.ID})
}

func (h *EventHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid event id"})
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Location    *string `json:"location"`
		StartTime   *int64  `json:"start_time"`
		MinRole     *string `json:"min_role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.StartTime != nil {
		fields["start_time"] = time.Unix(*req.StartTime, 0)
	}
	if req.MinRole != nil {
		fields["min_role"] = *req.MinRole
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "nothing to update"})
		return
	}

	if err := h.svc.UpdateEvent(c.Request.Context(), middleware.Identity(c), id, fields); err != nil {
		c.JSON(bookingStatus(err), gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
