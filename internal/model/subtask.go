package model

import (
	"time"
)

// SubTask 子任务模型，与任务同构
type SubTask struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	TaskID      uint   `json:"task_id" gorm:"not null;index"`
	Task        *Task  `json:"task,omitempty" gorm:"foreignKey:TaskID"`
	Title       string `json:"title" gorm:"not null" binding:"required"`
	Description string `json:"description"`

	// 状态
	Status Status `json:"status" gorm:"default:'pending'"`

	// 指派信息
	AssignedTo *uint `json:"assigned_to" gorm:"index"`
	AssignedBy uint  `json:"assigned_by" gorm:"not null"`
	Assignee   *User `json:"assignee,omitempty" gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL"`

	// 时间信息
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TableName 自定义表名
func (SubTask) TableName() string {
	return "sub_task"
}

// IsAssignedTo 是否指派给指定用户
func (s *SubTask) IsAssignedTo(userID uint) bool {
	return s.AssignedTo != nil && *s.AssignedTo == userID
}

// IsOverdue 是否已逾期
func (s *SubTask) IsOverdue(now time.Time) bool {
	return s.DueDate != nil && s.CompletedAt == nil && now.After(*s.DueDate)
}
