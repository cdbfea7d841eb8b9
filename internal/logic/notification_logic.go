package logic

import (
	"net/http"

	"github.com/iamkhs/ProjectManagement/internal/logger"
	"github.com/iamkhs/ProjectManagement/internal/model"
	"gorm.io/gorm"
)

// NotificationLogic 通知查询逻辑
type NotificationLogic struct {
	db *gorm.DB
}

// NewNotificationLogic 创建通知查询逻辑
func NewNotificationLogic(db *gorm.DB) *NotificationLogic {
	return &NotificationLogic{db: db}
}

// GetForUser 获取用户的通知，按时间倒序
func (n *NotificationLogic) GetForUser(userID uint) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := n.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		logger.Error("Failed to fetch notifications for user %d: %v", userID, err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to fetch notifications")
	}

	return notifications, nil
}

// MarkRead 标记通知已读，只能操作自己的通知
func (n *NotificationLogic) MarkRead(userID uint, id string) error {
	result := n.db.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		logger.Error("Failed to mark notification %s read: %v", id, result.Error)
		return NewStatusError(http.StatusInternalServerError, "Failed to update notification")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
