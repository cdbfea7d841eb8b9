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

// TaskLogic 任务业务逻辑
type TaskLogic struct {
	db         *gorm.DB
	dispatcher notify.Dispatcher
}

// NewTaskLogic 创建任务业务逻辑
func NewTaskLogic(db *gorm.DB, dispatcher notify.Dispatcher) *TaskLogic {
	return &TaskLogic{db: db, dispatcher: dispatcher}
}

// CreateTask 创建任务，操作人记为assigned_by
func (t *TaskLogic) CreateTask(actor *model.User, task *model.Task) error {
	var project model.Project
	if err := t.db.First(&project, task.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		logger.Error("Failed to fetch project %d: %v", task.ProjectID, err)
		return NewStatusError(http.StatusInternalServerError, "Failed to create Task")
	}

	// 创建时直接携带被指派人也要满足指派校验
	if task.AssignedTo != nil {
		if err := validateAssignee(t.db, task.ProjectID, *task.AssignedTo); err != nil {
			return err
		}
	}

	task.AssignedBy = actor.ID
	if task.Status == "" {
		task.Status = model.StatusPending
	}
	if !task.Status.IsValid() {
		return ErrInvalidStatus
	}

	if err := t.db.Create(task).Error; err != nil {
		logger.Error("Task creation failed: %v", err)
		return NewStatusError(http.StatusInternalServerError, "Failed to create Task")
	}

	return nil
}

// GetTask 获取任务详情
func (t *TaskLogic) GetTask(id uint) (*model.Task, error) {
	var task model.Task
	if err := t.db.Preload("Project").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logger.Error("Failed to fetch task %d: %v", id, err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to fetch task")
	}

	return &task, nil
}

// GetTasksByProject 分页获取项目下的任务
func (t *TaskLogic) GetTasksByProject(projectID uint, page, perPage int) ([]model.Task, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	var total int64
	if err := t.db.Model(&model.Task{}).Where("project_id = ?", projectID).Count(&total).Error; err != nil {
		logger.Error("Failed to count tasks for project %d: %v", projectID, err)
		return nil, 0, NewStatusError(http.StatusInternalServerError, "Failed to fetch tasks")
	}

	var tasks []model.Task
	if err := t.db.Where("project_id = ?", projectID).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Order("id").
		Find(&tasks).Error; err != nil {
		logger.Error("Failed to fetch tasks for project %d: %v", projectID, err)
		return nil, 0, NewStatusError(http.StatusInternalServerError, "Failed to fetch tasks")
	}

	return tasks, total, nil
}

// UpdateTask 部分更新任务。状态发生变化时向被指派人和项目负责人发送通知，
// 并维持 completed_at 与 status 的一致性。
func (t *TaskLogic) UpdateTask(actor *model.User, id uint, updates map[string]interface{}) (*model.Task, error) {
	task, err := t.GetTask(id)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	newStatus, statusChanged, err := statusFromUpdates(updates, oldStatus)
	if err != nil {
		return nil, err
	}
	if statusChanged {
		applyCompletionTimestamp(updates, newStatus)
	}

	if err := t.db.Model(task).Updates(updates).Error; err != nil {
		logger.Error("Task update failed for %d: %v", id, err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to update Task")
	}

	updated, err := t.GetTask(id)
	if err != nil {
		return nil, err
	}

	if statusChanged {
		t.dispatcher.Dispatch(notify.NewStatusChangedEvent(
			notify.EntityTask, task.ID, task.Title,
			oldStatus, newStatus, actor.ID,
			t.taskRecipients(updated),
		))
	}

	return updated, nil
}

// DeleteTask 删除任务，子任务由外键级联删除
func (t *TaskLogic) DeleteTask(id uint) error {
	result := t.db.Delete(&model.Task{}, id)
	if result.Error != nil {
		logger.Error("Task deletion failed for %d: %v", id, result.Error)
		return NewStatusError(http.StatusInternalServerError, "Failed to delete Task")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// CompleteTask 标记任务完成。已完成时返回completedNow=false作为良性空操作标记，
// 不视为错误。
func (t *TaskLogic) CompleteTask(actor *model.User, id uint) (*model.Task, bool, error) {
	task, err := t.GetTask(id)
	if err != nil {
		return nil, false, err
	}

	if task.Status == model.StatusCompleted {
		return task, false, nil
	}

	oldStatus := task.Status
	now := time.Now()
	updates := map[string]interface{}{
		"status":       model.StatusCompleted,
		"completed_at": &now,
	}

	if err := t.db.Model(task).Updates(updates).Error; err != nil {
		logger.Error("Failed to complete task %d: %v", id, err)
		return nil, false, NewStatusError(http.StatusInternalServerError, "Failed to update Task")
	}

	t.dispatcher.Dispatch(notify.NewStatusChangedEvent(
		notify.EntityTask, task.ID, task.Title,
		oldStatus, model.StatusCompleted, actor.ID,
		t.taskRecipients(task),
	))

	return task, true, nil
}

// AssignTask 指派任务。被指派人必须是team_member且为所属项目成员。
func (t *TaskLogic) AssignTask(actor *model.User, id, userID uint) (*model.Task, error) {
	task, err := t.GetTask(id)
	if err != nil {
		return nil, err
	}

	if err := validateAssignee(t.db, task.ProjectID, userID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"assigned_to": userID,
		"assigned_by": actor.ID,
	}
	if err := t.db.Model(task).Updates(updates).Error; err != nil {
		logger.Error("Failed to assign task %d to user %d: %v", id, userID, err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to assign task")
	}

	task.AssignedTo = &userID
	task.AssignedBy = actor.ID

	t.dispatcher.Dispatch(notify.NewAssignedEvent(
		notify.EntityTask, task.ID, task.Title, actor.ID,
		t.taskRecipients(task),
	))

	return task, nil
}

// UnassignTask 取消指派，assigned_by保持不变
func (t *TaskLogic) UnassignTask(id uint) (*model.Task, error) {
	task, err := t.GetTask(id)
	if err != nil {
		return nil, err
	}

	if task.AssignedTo == nil {
		return nil, ErrNoAssignee
	}

	if err := t.db.Model(task).Update("assigned_to", nil).Error; err != nil {
		logger.Error("Failed to unassign task %d: %v", id, err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to unassign task")
	}

	task.AssignedTo = nil
	return task, nil
}

// taskRecipients 通知接收人：被指派人（如有）与项目负责人（可解析时）
func (t *TaskLogic) taskRecipients(task *model.Task) []uint {
	var recipients []uint
	if task.AssignedTo != nil {
		recipients = append(recipients, *task.AssignedTo)
	}

	if task.Project != nil {
		recipients = append(recipients, task.Project.TeamLeaderID)
	} else {
		var project model.Project
		if err := t.db.First(&project, task.ProjectID).Error; err == nil {
			recipients = append(recipients, project.TeamLeaderID)
		}
	}

	return recipients
}

// validateAssignee 校验被指派人：必须存在、角色为team_member、且为项目成员。
// 任务与子任务的创建和指派共用同一套校验。
func validateAssignee(db *gorm.DB, projectID, userID uint) error {
	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		logger.Error("Failed to fetch user %d: %v", userID, err)
		return NewStatusError(http.StatusInternalServerError, "Failed to validate assignee")
	}

	if user.Role != model.RoleTeamMember {
		return ErrOnlyTeamMembers
	}

	var memberCount int64
	if err := db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&memberCount).Error; err != nil {
		logger.Error("Failed to check membership of user %d: %v", userID, err)
		return NewStatusError(http.StatusInternalServerError, "Failed to validate assignee")
	}
	if memberCount == 0 {
		return ErrNotProjectMember
	}

	return nil
}

// statusFromUpdates 从部分更新中提取状态变化
func statusFromUpdates(updates map[string]interface{}, oldStatus model.Status) (model.Status, bool, error) {
	raw, ok := updates["status"]
	if !ok {
		return oldStatus, false, nil
	}

	var newStatus model.Status
	switch v := raw.(type) {
	case model.Status:
		newStatus = v
	case string:
		newStatus = model.Status(v)
	default:
		return oldStatus, false, ErrInvalidStatus
	}

	if !newStatus.IsValid() {
		return oldStatus, false, ErrInvalidStatus
	}

	// 归一化，避免把string写入gorm更新
	updates["status"] = newStatus

	return newStatus, newStatus != oldStatus, nil
}

// applyCompletionTimestamp 维持不变式：completed_at 非空 当且仅当 状态为completed。
// 从completed改回其他状态时清空completed_at。
func applyCompletionTimestamp(updates map[string]interface{}, newStatus model.Status) {
	if newStatus == model.StatusCompleted {
		now := time.Now()
		updates["completed_at"] = &now
	} else {
		updates["completed_at"] = nil
	}
}
