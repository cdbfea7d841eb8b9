package logic

import (
	"fmt"
	"testing"

	"github.com/iamkhs/ProjectManagement/internal/database"
	"github.com/iamkhs/ProjectManagement/internal/model"
	"github.com/iamkhs/ProjectManagement/internal/notify"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// newTestDB 创建测试用内存数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// recordingDispatcher 记录分发的事件，供断言使用
type recordingDispatcher struct {
	events []notify.Event
}

func (d *recordingDispatcher) Dispatch(event notify.Event) {
	d.events = append(d.events, event)
}

func createUser(t *testing.T, db *gorm.DB, name string, role model.Role) *model.User {
	t.Helper()

	user := model.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return &user
}

func createProject(t *testing.T, db *gorm.DB, leader *model.User, title string) *model.Project {
	t.Helper()

	project := model.Project{
		Title:        title,
		TeamLeaderID: leader.ID,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("failed to create project %s: %v", title, err)
	}
	return &project
}

func addMember(t *testing.T, db *gorm.DB, projectID, userID uint) {
	t.Helper()

	member := model.ProjectMember{ProjectID: projectID, UserID: userID}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to add member %d to project %d: %v", userID, projectID, err)
	}
}

func createTask(t *testing.T, db *gorm.DB, project *model.Project, creator *model.User, title string) *model.Task {
	t.Helper()

	task := model.Task{
		ProjectID:  project.ID,
		Title:      title,
		Status:     model.StatusPending,
		AssignedBy: creator.ID,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task %s: %v", title, err)
	}
	return &task
}

func createSubTask(t *testing.T, db *gorm.DB, task *model.Task, creator *model.User, title string) *model.SubTask {
	t.Helper()

	subTask := model.SubTask{
		TaskID:     task.ID,
		Title:      title,
		Status:     model.StatusPending,
		AssignedBy: creator.ID,
	}
	if err := db.Create(&subTask).Error; err != nil {
		t.Fatalf("failed to create subtask %s: %v", title, err)
	}
	return &subTask
}

func containsRecipient(recipients []uint, userID uint) bool {
	for _, id := range recipients {
		if id == userID {
			return true
		}
	}
	return false
}
