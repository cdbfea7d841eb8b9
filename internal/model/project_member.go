package model

import (
	"time"
)

// ProjectMember 项目成员关系，(project_id, user_id) 唯一
type ProjectMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ProjectID uint  `json:"project_id" gorm:"not null;uniqueIndex:idx_project_user"`
	UserID    uint  `json:"user_id" gorm:"not null;uniqueIndex:idx_project_user"`
	User      *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName 自定义表名
func (ProjectMember) TableName() string {
	return "project_member"
}
