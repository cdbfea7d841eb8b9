package logic

import (
	"errors"
	"net/http"
	"time"

	"github.com/iamkhs/ProjectManagement/internal/logger"
	"github.com/iamkhs/ProjectManagement/internal/model"
	"github.com/iamkhs/ProjectManagement/internal/notify"
	"gorm.io/gorm"
)

// SubTaskLogic 子任务业务逻辑
type SubTaskLogic struct {
	db         *gorm.DB
	dispatcher notify.Dispatcher
}

// NewSubTaskLogic 创建子任务业务逻辑
func NewSubTaskLogic(db *gorm.DB, dispatcher notify.Dispatcher) *SubTaskLogic {
	return &SubTaskLogic{db: db, dispatcher: dispatcher}
}

// CreateSubTask 创建子任务，操作人记为assigned_by
func (s *SubTaskLogic) CreateSubTask(actor *model.User, subTask *model.SubTask) error {
	var task model.Task
	if err := s.db.First(&task, subTask.TaskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		logger.Error("Failed to fetch task %d: %v", subTask.TaskID, err)
		return NewStatusError(http.StatusInternalServerError, "Failed to create SubTask")
	}

	// 创建时直接携带被指派人也要满足指派校验，成员关系看父任务所在项目
	if subTask.AssignedTo != nil {
		if err := validateAssignee(s.db, task.ProjectID, *subTask.AssignedTo); err != nil {
			return err
		}
	}

	subTask.AssignedBy = actor.ID
	if subTask.Status == "" {
		subTask.Status = model.StatusPending
	}
	if !subTask.Status.IsValid() {
		return ErrInvalidStatus
	}

	if err := s.db.Create(subTask).Error; err != nil {
		logger.Error("SubTask creation failed: %v", err)
		return NewStatusError(http.StatusInternalServerError, "Failed to create SubTask")
	}

	return nil
}

// GetSubTask 获取子任务详情
func (s *SubTaskLogic) GetSubTask(id uint) (*model.SubTask, error) {
	var subTask model.SubTask
	if err := s.db.Preload("Task").Preload("Task.Project").First(&subTask, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logger.Error("Failed to fetch subtask %d: %v", id, err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to fetch subtask")
	}

	return &subTask, nil
}

// GetSubTasksByTask 分页获取任务下的子任务
func (s *SubTaskLogic) GetSubTasksByTask(taskID uint, page, perPage int) ([]model.SubTask, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	var total int64
	if err := s.db.Model(&model.SubTask{}).Where("task_id = ?", taskID).Count(&total).Error; err != nil {
		logger.Error("Failed to count subtasks for task %d: %v", taskID, err)
		return nil, 0, NewStatusError(http.StatusInternalServerError, "Failed to fetch subtasks")
	}

	var subTasks []model.SubTask
	if err := s.db.Where("task_id = ?", taskID).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Order("id").
		Find(&subTasks).Error; err != nil {
		logger.Error("Failed to fetch subtasks for task %d: %v", taskID, err)
		return nil, 0, NewStatusError(http.StatusInternalServerError, "Failed to fetch subtasks")
	}

	return subTasks, total, nil
}

// UpdateSubTask 部分更新子任务，状态变化时通知被指派人和项目负责人
func (s *SubTaskLogic) UpdateSubTask(actor *model.User, id uint, updates map[string]interface{}) (*model.SubTask, error) {
	subTask, err := s.GetSubTask(id)
	if err != nil {
		return nil, err
	}

	oldStatus := subTask.Status
	newStatus, statusChanged, err := statusFromUpdates(updates, oldStatus)
	if err != nil {
		return nil, err
	}
	if statusChanged {
		applyCompletionTimestamp(updates, newStatus)
	}

	if err := s.db.Model(subTask).Updates(updates).Error; err != nil {
		logger.Error("SubTask update failed for %d: %v", id, err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to update SubTask")
	}

	updated, err := s.GetSubTask(id)
	if err != nil {
		return nil, err
	}

	if statusChanged {
		s.dispatcher.Dispatch(notify.NewStatusChangedEvent(
			notify.EntitySubTask, subTask.ID, subTask.Title,
			oldStatus, newStatus, actor.ID,
			s.subTaskRecipients(updated),
		))
	}

	return updated, nil
}

// DeleteSubTask 删除子任务
func (s *SubTaskLogic) DeleteSubTask(id uint) error {
	result := s.db.Delete(&model.SubTask{}, id)
	if result.Error != nil {
		logger.Error("SubTask deletion failed for %d: %v", id, result.Error)
		return NewStatusError(http.StatusInternalServerError, "Failed to delete SubTask")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// CompleteSubTask 标记子任务完成，已完成时返回completedNow=false
func (s *SubTaskLogic) CompleteSubTask(actor *model.User, id uint) (*model.SubTask, bool, error) {
	subTask, err := s.GetSubTask(id)
	if err != nil {
		return nil, false, err
	}

	if subTask.Status == model.StatusCompleted {
		return subTask, false, nil
	}

	oldStatus := subTask.Status
	now := time.Now()
	updates := map[string]interface{}{
		"status":       model.StatusCompleted,
		"completed_at": &now,
	}

	if err := s.db.Model(subTask).Updates(updates).Error; err != nil {
		logger.Error("Failed to complete subtask %d: %v", id, err)
		return nil, false, NewStatusError(http.StatusInternalServerError, "Failed to update SubTask")
	}

	s.dispatcher.Dispatch(notify.NewStatusChangedEvent(
		notify.EntitySubTask, subTask.ID, subTask.Title,
		oldStatus, model.StatusCompleted, actor.ID,
		s.subTaskRecipients(subTask),
	))

	return subTask, true, nil
}

// AssignSubTask 指派子任务。与任务一致：被指派人必须是team_member，
// 且为子任务所属任务的项目成员。
func (s *SubTaskLogic) AssignSubTask(actor *model.User, id, userID uint) (*model.SubTask, error) {
	subTask, err := s.GetSubTask(id)
	if err != nil {
		return nil, err
	}

	projectID := uint(0)
	if subTask.Task != nil {
		projectID = subTask.Task.ProjectID
	}

	if err := validateAssignee(s.db, projectID, userID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"assigned_to": userID,
		"assigned_by": actor.ID,
	}
	if err := s.db.Model(subTask).Updates(updates).Error; err != nil {
		logger.Error("Failed to assign subtask %d to user %d: %v", id, userID, err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to assign subtask")
	}

	subTask.AssignedTo = &userID
	subTask.AssignedBy = actor.ID

	s.dispatcher.Dispatch(notify.NewAssignedEvent(
		notify.EntitySubTask, subTask.ID, subTask.Title, actor.ID,
		s.subTaskRecipients(subTask),
	))

	return subTask, nil
}

// UnassignSubTask 取消指派，assigned_by保持不变
func (s *SubTaskLogic) UnassignSubTask(id uint) (*model.SubTask, error) {
	subTask, err := s.GetSubTask(id)
	if err != nil {
		return nil, err
	}

	if subTask.AssignedTo == nil {
		return nil, ErrNoAssignee
	}

	if err := s.db.Model(subTask).Update("assigned_to", nil).Error; err != nil {
		logger.Error("Failed to unassign subtask %d: %v", id, err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to unassign subtask")
	}

	subTask.AssignedTo = nil
	return subTask, nil
}

// subTaskRecipients 通知接收人：被指派人（如有）与所属项目负责人（可解析时）
func (s *SubTaskLogic) subTaskRecipients(subTask *model.SubTask) []uint {
	var recipients []uint
	if subTask.AssignedTo != nil {
		recipients = append(recipients, *subTask.AssignedTo)
	}

	if subTask.Task != nil && subTask.Task.Project != nil {
		recipients = append(recipients, subTask.Task.Project.TeamLeaderID)
	} else {
		var task model.Task
		if err := s.db.Preload("Project").First(&task, subTask.TaskID).Error; err == nil && task.Project != nil {
			recipients = append(recipients, task.Project.TeamLeaderID)
		}
	}

	return recipients
}
