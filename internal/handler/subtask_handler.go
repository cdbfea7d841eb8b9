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

// SubTaskHandler 子任务处理器
type SubTaskHandler struct {
	subTaskLogic *logic.SubTaskLogic
	taskLogic    *logic.TaskLogic
}

// NewSubTaskHandler 创建子任务处理器
func NewSubTaskHandler(db *gorm.DB, dispatcher notify.Dispatcher) *SubTaskHandler {
	return &SubTaskHandler{
		subTaskLogic: logic.NewSubTaskLogic(db, dispatcher),
		taskLogic:    logic.NewTaskLogic(db, dispatcher),
	}
}

// GetSubTask 获取子任务详情
func (h *SubTaskHandler) GetSubTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	subTask, err := h.subTaskLogic.GetSubTask(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.SubTaskView(actor, subTask)) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subtask": subTask,
		"status":  http.StatusOK,
	})
}

// GetSubTasksByTask 获取任务下的子任务
func (h *SubTaskHandler) GetSubTasksByTask(c *gin.Context) {
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

	subTasks, total, err := h.subTaskLogic.GetSubTasksByTask(id, page, perPage)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "SubTasks by Task",
		"subtasks": subTasks,
		"total":    total,
		"status":   http.StatusOK,
	})
}

// CreateSubTask 在任务下创建子任务
func (h *SubTaskHandler) CreateSubTask(c *gin.Context) {
	actor := CurrentUser(c)
	if !Authorize(c, policy.SubTaskCreate(actor)) {
		return
	}

	taskID, ok := parseID(c)
	if !ok {
		return
	}

	var req SubTaskStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	subTask := model.SubTask{
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if err := h.subTaskLogic.CreateSubTask(actor, &subTask); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "SubTask successfully created",
		"subtask": subTask,
		"status":  http.StatusCreated,
	})
}

// UpdateSubTask 更新子任务，成员角色仅允许更新status字段
func (h *SubTaskHandler) UpdateSubTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	subTask, err := h.subTaskLogic.GetSubTask(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.SubTaskUpdate(actor, subTask)) {
		return
	}

	var req SubTaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updates := req.ToUpdates()
	if denied := policy.DisallowedUpdateFields(actor.Role, updates); len(denied) > 0 {
		ErrorResponse(c, http.StatusForbidden, "You are only allowed to update the task status.")
		return
	}

	updated, err := h.subTaskLogic.UpdateSubTask(actor, id, updates)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "SubTask successfully updated",
		"subtask": updated,
		"status":  http.StatusOK,
	})
}

// DeleteSubTask 删除子任务
func (h *SubTaskHandler) DeleteSubTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	subTask, err := h.subTaskLogic.GetSubTask(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.SubTaskDelete(actor, subTask)) {
		return
	}

	if err := h.subTaskLogic.DeleteSubTask(id); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "SubTask deleted successfully",
		"status":  http.StatusOK,
	})
}

// CompleteSubTask 标记子任务完成
func (h *SubTaskHandler) CompleteSubTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	subTask, err := h.subTaskLogic.GetSubTask(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.SubTaskMarkAsComplete(actor, subTask)) {
		return
	}

	completed, completedNow, err := h.subTaskLogic.CompleteSubTask(actor, id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}
	if !completedNow {
		ErrorResponse(c, http.StatusBadRequest, "SubTask already completed.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "SubTask marked as completed",
		"subtask": completed,
		"status":  http.StatusOK,
	})
}

// AssignSubTask 指派子任务
func (h *SubTaskHandler) AssignSubTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.SubTaskAssign(actor)) {
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if _, err := h.subTaskLogic.AssignSubTask(actor, id, req.UserID); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "SubTask successfully assigned to user",
		"status":  http.StatusOK,
	})
}

// UnassignSubTask 取消子任务指派
func (h *SubTaskHandler) UnassignSubTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.SubTaskUnassign(actor)) {
		return
	}

	if _, err := h.subTaskLogic.UnassignSubTask(id); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "SubTask successfully unassigned.",
		"status":  http.StatusOK,
	})
}
