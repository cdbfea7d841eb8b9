package model

import (
	"time"
)

// Role 用户角色，角色互斥且固定
type Role string

const (
	RoleAdmin      Role = "admin"       // 管理员
	RoleTeamLeader Role = "team_leader" // 团队负责人
	RoleTeamMember Role = "team_member" // 团队成员
)

// IsValid 校验角色取值
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeamLeader, RoleTeamMember:
		return true
	}
	return false
}

// User 用户模型
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name         string `json:"name" gorm:"not null" binding:"required"`
	Email        string `json:"email" gorm:"not null;uniqueIndex"`
	PasswordHash string `json:"-" gorm:"not null"`
	Role         Role   `json:"role" gorm:"not null;default:'team_member'"`
}

// TableName 自定义表名
func (User) TableName() string {
	return "user"
}
