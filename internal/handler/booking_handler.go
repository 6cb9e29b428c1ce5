package handler

import (
	"errors"
	"net/http"
	"strconv"

	"Gather_Events/internal/middleware"
	"Gather_Events/internal/service"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	svc *service.BookingService
}

// BookingCreateReq 表单先校验成强类型命令再进领域逻辑
type BookingCreateReq struct {
	EventID        uint64 `json:"event_id" binding:"required"`
	Transportation string `json:"transportation" binding:"max=32"`
	PickupNeeded   bool   `json:"pickup_needed"`
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// Create 预订接口，对外只有 {success:true} / {error:reason} 两种形态
func (h *BookingHandler) Create(c *gin.Context) {
	var req BookingCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid params"})
		return
	}

	ident := middleware.Identity(c)
	booking, err := h.svc.CreateBooking(c.Request.Context(), ident, req.EventID, req.Transportation, req.PickupNeeded)
	if err != nil {
		c.JSON(bookingStatus(err), gin.H{"error": bookingReason(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking_id": booking.ID})
}

// Cancel 取消预订
func (h *BookingHandler) Cancel(c *gin.Context) {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	ident := middleware.Identity(c)
	if err := h.svc.CancelBooking(c.Request.Context(), ident, bookingID); err != nil {
		c.JSON(bookingStatus(err), gin.H{"error": bookingReason(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListMine “我的预订”
func (h *BookingHandler) ListMine(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	ident := middleware.Identity(c)
	list, err := h.svc.ListMyBookings(c.Request.Context(), ident, page, size)
	if err != nil {
		c.JSON(bookingStatus(err), gin.H{"error": bookingReason(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": list})
}

func bookingStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateBooking):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func bookingReason(err error) string {
	switch {
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrDuplicateBooking):
		return err.Error()
	default:
		// 瞬时存储错误不外泄细节
		return "transient storage error"
	}
}
