package notification

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"homelet/internal/domain"
	"homelet/internal/pkg/response"
)

type NotificationRepository interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
}

type Handler struct {
	notifications NotificationRepository
}

func NewHandler(notifications NotificationRepository) *Handler {
	return &Handler{notifications: notifications}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.List)
	rg.PATCH("/notifications/:id/read", h.MarkRead)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, err := h.notifications.ListByUser(c.Request.Context(), c.GetInt64("user_id"), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list notifications")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"notifications": items})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to mark notification read")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true})
}
