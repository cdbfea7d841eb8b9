package model

import (
	"time"
)

// Status 任务状态
type Status string

const (
	StatusPending    Status = "pending"     // 待处理
	StatusInProgress Status = "in-progress" // 进行中
	StatusCompleted  Status = "completed"   // 已完成
)

// IsValid 校验状态取值
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task 任务模型
type Task struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	ProjectID   uint     `json:"project_id" gorm:"not null;index"`
	Project     *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Title       string   `json:"title" gorm:"not null" binding:"required"`
	Description string   `json:"description"`

	// 状态
	Status Status `json:"status" gorm:"default:'pending'"`

	// 指派信息
	AssignedTo *uint `json:"assigned_to" gorm:"index"`
	AssignedBy uint  `json:"assigned_by" gorm:"not null"`
	Assignee   *User `json:"assignee,omitempty" gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL"`

	// 时间信息
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`

	// 关联
	SubTasks []SubTask `json:"sub_tasks,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// TableName 自定义表名
func (Task) TableName() string {
	return "task"
}

// IsAssignedTo 是否指派给指定用户
func (t *Task) IsAssignedTo(userID uint) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// IsOverdue 是否已逾期
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.CompletedAt == nil && now.After(*t.DueDate)
}
