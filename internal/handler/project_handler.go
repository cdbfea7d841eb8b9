package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iamkhs/ProjectManagement/internal/logic"
	"github.com/iamkhs/ProjectManagement/internal/model"
	"github.com/iamkhs/ProjectManagement/internal/policy"
	"gorm.io/gorm"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	projectLogic *logic.ProjectLogic
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectLogic: logic.NewProjectLogic(db),
	}
}

// GetProjects 获取项目列表
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	actor := CurrentUser(c)
	if !Authorize(c, policy.ProjectViewAny(actor)) {
		return
	}

	projects, err := h.projectLogic.GetProjects()
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"status":   http.StatusOK,
	})
}

// CreateProject 创建项目
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor := CurrentUser(c)
	if !Authorize(c, policy.ProjectCreate(actor)) {
		return
	}

	var req ProjectStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	project := model.Project{
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.projectLogic.CreateProject(actor, &project); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully.",
		"project": project,
		"status":  http.StatusCreated,
	})
}

// GetProject 获取项目详情
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	project, err := h.projectLogic.GetProject(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	isMember, err := h.projectLogic.IsMember(id, actor.ID)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}
	if !Authorize(c, policy.ProjectView(actor, project, isMember)) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"status":  http.StatusOK,
	})
}

// UpdateProject 更新项目
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	project, err := h.projectLogic.GetProject(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.ProjectUpdate(actor, project)) {
		return
	}

	var req ProjectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updates := req.ToUpdates()
	if len(updates) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "No fields to update.")
		return
	}

	if err := h.projectLogic.UpdateProject(id, updates); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully.",
		"status":  http.StatusOK,
	})
}

// DeleteProject 删除项目
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	project, err := h.projectLogic.GetProject(id)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.ProjectDelete(actor, project)) {
		return
	}

	if err := h.projectLogic.DeleteProject(id); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully.",
		"status":  http.StatusOK,
	})
}

// AssignMember 指派项目成员
func (h *ProjectHandler) AssignMember(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.ProjectAssign(actor)) {
		return
	}

	if _, err := h.projectLogic.GetProject(id); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	member, err := h.projectLogic.AssignMember(id, req.UserID)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}
	if member == nil {
		// 已是成员：良性空操作，与失败区分开
		ErrorResponse(c, http.StatusBadRequest, "User is already a member of this project")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project member assigned successfully.",
		"status":  http.StatusOK,
	})
}

// UnassignMember 移除项目成员
func (h *ProjectHandler) UnassignMember(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor := CurrentUser(c)
	if !Authorize(c, policy.ProjectUnassign(actor)) {
		return
	}

	if _, err := h.projectLogic.GetProject(id); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.projectLogic.UnassignMember(id, req.UserID); err != nil {
		DomainErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project member unassigned successfully.",
		"status":  http.StatusOK,
	})
}

// parseID 解析路径中的数字ID
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid id.")
		return 0, false
	}
	return uint(id), true
}
