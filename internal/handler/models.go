package handler

import (
	"time"
)

// 请求模型，校验规则与字段上限沿用原有接口约定

// ProjectStoreRequest 创建项目请求
type ProjectStoreRequest struct {
	Title       string `json:"title" binding:"required,max=25"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

// ProjectUpdateRequest 更新项目请求
type ProjectUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=25"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

// ToUpdates 转换为部分更新字段集
func (r *ProjectUpdateRequest) ToUpdates() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Title != nil {
		updates["title"] = *r.Title
	}
	if r.Description != nil {
		updates["description"] = *r.Description
	}
	return updates
}

// MemberRequest 项目成员指派/移除请求
type MemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// TaskStoreRequest 创建任务请求
type TaskStoreRequest struct {
	Title       string     `json:"title" binding:"required,max=25"`
	Description string     `json:"description" binding:"omitempty,max=255"`
	ProjectID   uint       `json:"project_id" binding:"required"`
	DueDate     *time.Time `json:"due_date"`
	AssignedTo  *uint      `json:"assigned_to"`
}

// TaskUpdateRequest 更新任务请求
type TaskUpdateRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=25"`
	Description *string    `json:"description" binding:"omitempty,max=255"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending in-progress completed"`
	DueDate     *time.Time `json:"due_date"`
}

// ToUpdates 转换为部分更新字段集
func (r *TaskUpdateRequest) ToUpdates() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Title != nil {
		updates["title"] = *r.Title
	}
	if r.Description != nil {
		updates["description"] = *r.Description
	}
	if r.Status != nil {
		updates["status"] = *r.Status
	}
	if r.DueDate != nil {
		updates["due_date"] = *r.DueDate
	}
	return updates
}

// SubTaskStoreRequest 创建子任务请求，任务ID来自路径
type SubTaskStoreRequest struct {
	Title       string     `json:"title" binding:"required,max=25"`
	Description string     `json:"description" binding:"omitempty,max=255"`
	DueDate     *time.Time `json:"due_date"`
}

// SubTaskUpdateRequest 更新子任务请求
type SubTaskUpdateRequest = TaskUpdateRequest

// ReportQuery 报表过滤参数
type ReportQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	ProjectID *uint  `form:"project_id"`
}
