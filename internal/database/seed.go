package database

import (
	"github.com/iamkhs/ProjectManagement/internal/logger"
	"github.com/iamkhs/ProjectManagement/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed 在用户表为空时写入初始用户
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	users := []struct {
		name     string
		email    string
		password string
		role     model.Role
	}{
		{"Admin", "admin@gmail.com", "admin", model.RoleAdmin},
		{"John Doe Team Leader", "teamleader1@gmail.com", "leader1", model.RoleTeamLeader},
		{"Jane Smith Team Leader", "teamleader2@gmail.com", "leader2", model.RoleTeamLeader},
		{"Mike Johnson", "teammember1@gmail.com", "member1", model.RoleTeamMember},
		{"Sara Connor", "teammember2@gmail.com", "member2", model.RoleTeamMember},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := model.User{
			Name:         u.name,
			Email:        u.email,
			PasswordHash: string(hash),
			Role:         u.role,
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
	}

	logger.Info("Seeded %d initial users", len(users))
	return nil
}
