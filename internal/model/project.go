package model

import (
	"time"
)

// Project 项目模型，团队负责人在创建时成为所有者
type Project struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title       string `json:"title" gorm:"not null" binding:"required"`
	Description string `json:"description" gorm:"type:text"`

	// 所有者
	TeamLeaderID uint  `json:"team_leader_id" gorm:"not null;index"`
	TeamLeader   *User `json:"team_leader,omitempty" gorm:"foreignKey:TeamLeaderID"`

	// 关联
	Tasks   []Task          `json:"tasks,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Members []ProjectMember `json:"members,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// TableName 自定义表名
func (Project) TableName() string {
	return "project"
}

// IsOwnedBy 是否由指定用户创建
func (p *Project) IsOwnedBy(userID uint) bool {
	return p.TeamLeaderID == userID
}
