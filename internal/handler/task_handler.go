package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iamkhs/ProjectManagement/internal/logic"
	"github.com/iamkhs/ProjectManagement/internal/model"
	"github.com/iamkhs/ProjectManagement/internal/notify"
	"github.com/iamkhs/ProjectManagement/internal/policy"
	"gorm.io/gorm"
)

// TaskHandler 任务处理器
type TaskHandler struct {
	taskLogic    *logic.TaskLogic
	projectLogic *logic.ProjectLogic
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(db *gorm.DB, dispatcher notify.Dispatcher) *TaskHandler {
	return &TaskHandler{
		taskLogic:    logic.NewTaskLogic(db, dispatcher),
		projectLogic: logic.NewProjectLogic(db),
	}
}

// GetTask 获取任务详情
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := h.taskLogic.GetTask(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.TaskView(actor, task, task.Project)) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task":   task,
		"status": http.StatusOK,
	})
}

// GetTasksByProject 获取项目下的任务
func (h *TaskHandler) GetTasksByProject(c *gin.Context) {
	actor := CurrentUser(c)
	if !Authorize(c, policy.TaskViewAny(actor)) {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "10"))

	tasks, total, err := h.taskLogic.GetTasksByProject(id, page, perPage)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tasks by Project",
		"tasks":   tasks,
		"total":   total,
		"status":  http.StatusOK,
	})
}

// CreateTask 创建任务
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req TaskStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	project, err := h.projectLogic.GetProject(req.ProjectID)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.TaskCreate(actor, project)) {
		return
	}

	task := model.Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
	}
	if err := h.taskLogic.CreateTask(actor, &task); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task successfully created",
		"task":    task,
		"status":  http.StatusCreated,
	})
}

// UpdateTask 更新任务，成员角色仅允许更新status字段
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := h.taskLogic.GetTask(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.TaskUpdate(actor, task)) {
		return
	}

	var req TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updates := req.ToUpdates()
	if denied := policy.DisallowedUpdateFields(actor.Role, updates); len(denied) > 0 {
		ErrorResponse(c, http.StatusForbidden, "You are only allowed to update the task status.")
		return
	}

	updated, err := h.taskLogic.UpdateTask(actor, id, updates)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task successfully updated",
		"task":    updated,
		"status":  http.StatusOK,
	})
}

// DeleteTask 删除任务
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := h.taskLogic.GetTask(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.TaskDelete(actor, task, task.Project)) {
		return
	}

	if err := h.taskLogic.DeleteTask(id); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"status":  http.StatusOK,
	})
}

// CompleteTask 标记任务完成
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := h.taskLogic.GetTask(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.TaskMarkAsComplete(actor, task)) {
		return
	}

	completed, completedNow, err := h.taskLogic.CompleteTask(actor, id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}
	if !completedNow {
		ErrorResponse(c, http.StatusBadRequest, "Task already completed.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task marked as completed",
		"task":    completed,
		"status":  http.StatusOK,
	})
}

// AssignTask 指派任务
func (h *TaskHandler) AssignTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := h.taskLogic.GetTask(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.TaskAssign(actor, task, task.Project)) {
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if _, err := h.taskLogic.AssignTask(actor, id, req.UserID); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task successfully assigned to user",
		"status":  http.StatusOK,
	})
}

// UnassignTask 取消任务指派
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := h.taskLogic.GetTask(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.TaskUnassign(actor, task, task.Project)) {
		return
	}

	if _, err := h.taskLogic.UnassignTask(id); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task successfully unassigned.",
		"status":  http.StatusOK,
	})
}
