package logic

import (
	"errors"
	"net/http"

	"github.com/iamkhs/ProjectManagement/internal/logger"
	"github.com/iamkhs/ProjectManagement/internal/model"
	"gorm.io/gorm"
)

// ProjectLogic 项目业务逻辑
type ProjectLogic struct {
	db *gorm.DB
}

// NewProjectLogic 创建项目业务逻辑
func NewProjectLogic(db *gorm.DB) *ProjectLogic {
	return &ProjectLogic{db: db}
}

// CreateProject 创建项目，创建人即成为项目负责人
func (p *ProjectLogic) CreateProject(actor *model.User, project *model.Project) error {
	project.TeamLeaderID = actor.ID

	if err := p.db.Create(project).Error; err != nil {
		logger.Error("Project creation failed: %v", err)
		return NewStatusError(http.StatusInternalServerError, "Failed to create Project")
	}

	return nil
}

// GetProjects 获取项目列表
func (p *ProjectLogic) GetProjects() ([]model.Project, error) {
	var projects []model.Project
	if err := p.db.Preload("TeamLeader").Find(&projects).Error; err != nil {
		logger.Error("Failed to fetch projects: %v", err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to fetch projects")
	}

	return projects, nil
}

// GetProject 获取项目详情
func (p *ProjectLogic) GetProject(id uint) (*model.Project, error) {
	var project model.Project
	if err := p.db.Preload("TeamLeader").
		Preload("Members").
		Preload("Members.User").
		First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logger.Error("Failed to fetch project %d: %v", id, err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to fetch project")
	}

	return &project, nil
}

// UpdateProject 更新项目字段
func (p *ProjectLogic) UpdateProject(id uint, updates map[string]interface{}) error {
	var project model.Project
	if err := p.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		logger.Error("Failed to fetch project %d: %v", id, err)
		return NewStatusError(http.StatusInternalServerError, "Failed to fetch project")
	}

	if err := p.db.Model(&project).Updates(updates).Error; err != nil {
		logger.Error("Project update failed for %d: %v", id, err)
		return NewStatusError(http.StatusInternalServerError, "Failed to update Project")
	}

	return nil
}

// DeleteProject 删除项目，任务与子任务由外键级联删除
func (p *ProjectLogic) DeleteProject(id uint) error {
	result := p.db.Delete(&model.Project{}, id)
	if result.Error != nil {
		logger.Error("Project deletion failed for %d: %v", id, result.Error)
		return NewStatusError(http.StatusInternalServerError, "Failed to delete Project")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// AssignMember 添加项目成员。已是成员时返回nil成员作为良性空操作标记。
func (p *ProjectLogic) AssignMember(projectID, userID uint) (*model.ProjectMember, error) {
	var user model.User
	if err := p.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logger.Error("Failed to fetch user %d: %v", userID, err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to assign member")
	}

	isMember, err := p.IsMember(projectID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, nil
	}

	member := model.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
	}
	if err := p.db.Create(&member).Error; err != nil {
		logger.Error("Failed to assign member %d to project %d: %v", userID, projectID, err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to assign member")
	}

	return &member, nil
}

// UnassignMember 移除项目成员
func (p *ProjectLogic) UnassignMember(projectID, userID uint) error {
	result := p.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.ProjectMember{})
	if result.Error != nil {
		logger.Error("Failed to unassign member %d from project %d: %v", userID, projectID, result.Error)
		return NewStatusError(http.StatusInternalServerError, "Failed to unassign member")
	}
	if result.RowsAffected == 0 {
		// 预期内的领域冲突，与上面的持久化失败区分开
		return NewStatusError(http.StatusBadRequest, "User is not a member of this project.")
	}

	return nil
}

// IsMember 是否为项目成员
func (p *ProjectLogic) IsMember(projectID, userID uint) (bool, error) {
	var count int64
	if err := p.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		logger.Error("Failed to check membership of user %d in project %d: %v", userID, projectID, err)
		return false, NewStatusError(http.StatusInternalServerError, "Failed to check project membership")
	}

	return count > 0, nil
}
