package model

import (
	"time"
)

// NotificationKind 通知类型
type NotificationKind string

const (
	NotificationAssigned      NotificationKind = "assigned"       // 任务指派
	NotificationStatusChanged NotificationKind = "status_changed" // 状态变更
	NotificationOverdue       NotificationKind = "overdue"        // 逾期提醒
)

// Notification 通知记录（数据库通道的落库形式）
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`

	UserID  uint             `json:"user_id" gorm:"not null;index"`
	Kind    NotificationKind `json:"kind" gorm:"not null"`
	Message string           `json:"message" gorm:"type:text;not null"`

	// 事件来源
	EntityKind string `json:"entity_kind"` // task / subtask
	EntityID   uint   `json:"entity_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`

	// 投递状态
	Read      bool `json:"read" gorm:"default:false"`
	Delivered bool `json:"delivered" gorm:"default:false;index"` // webhook是否已送达
}

// TableName 自定义表名
func (Notification) TableName() string {
	return "notification"
}
