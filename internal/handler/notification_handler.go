package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamkhs/ProjectManagement/internal/logic"
	"gorm.io/gorm"
)

// NotificationHandler 通知处理器
type NotificationHandler struct {
	notificationLogic *logic.NotificationLogic
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{
		notificationLogic: logic.NewNotificationLogic(db),
	}
}

// GetNotifications 获取当前用户的通知
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	actor := CurrentUser(c)

	notifications, err := h.notificationLogic.GetForUser(actor.ID)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"status":        http.StatusOK,
	})
}

// MarkNotificationRead 标记通知已读
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	actor := CurrentUser(c)
	id := c.Param("id")

	if err := h.notificationLogic.MarkRead(actor.ID, id); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification marked as read.",
		"status":  http.StatusOK,
	})
}
