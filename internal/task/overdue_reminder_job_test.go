package task

import (
	"fmt"
	"testing"
	"time"

	"github.com/iamkhs/ProjectManagement/internal/config"
	"github.com/iamkhs/ProjectManagement/internal/database"
	"github.com/iamkhs/ProjectManagement/internal/model"
	"github.com/iamkhs/ProjectManagement/internal/notify"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

type recordingDispatcher struct {
	events []notify.Event
}

func (d *recordingDispatcher) Dispatch(event notify.Event) {
	d.events = append(d.events, event)
}

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

func TestOverdueReminderJob(t *testing.T) {
	db := newTestDB(t)
	dispatcher := &recordingDispatcher{}
	cfg := &config.Config{Task: config.TaskConfig{Interval: 60}}
	job := NewOverdueReminderJob(db, cfg, dispatcher)

	leader := model.User{Name: "leader", Email: "leader@example.com", PasswordHash: "x", Role: model.RoleTeamLeader}
	if err := db.Create(&leader).Error; err != nil {
		t.Fatalf("failed to create leader: %v", err)
	}
	member := model.User{Name: "member", Email: "member@example.com", PasswordHash: "x", Role: model.RoleTeamMember}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to create member: %v", err)
	}
	project := model.Project{Title: "Website", TeamLeaderID: leader.ID}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)
	now := time.Now()

	overdue := model.Task{
		ProjectID: project.ID, Title: "Overdue task", Status: model.StatusPending,
		AssignedBy: leader.ID, AssignedTo: &member.ID, DueDate: &past,
	}
	onTime := model.Task{
		ProjectID: project.ID, Title: "Future task", Status: model.StatusPending,
		AssignedBy: leader.ID, DueDate: &future,
	}
	finished := model.Task{
		ProjectID: project.ID, Title: "Done task", Status: model.StatusCompleted,
		AssignedBy: leader.ID, DueDate: &past, CompletedAt: &now,
	}
	for _, task := range []*model.Task{&overdue, &onTime, &finished} {
		if err := db.Create(task).Error; err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
	}

	job.Execute()

	if len(dispatcher.events) != 1 {
		t.Fatalf("expected 1 overdue event, got %d", len(dispatcher.events))
	}
	event := dispatcher.events[0]
	if event.Kind != model.NotificationOverdue {
		t.Errorf("expected overdue event, got %s", event.Kind)
	}
	if event.EntityID != overdue.ID {
		t.Errorf("expected event for task %d, got %d", overdue.ID, event.EntityID)
	}
	if len(event.Recipients) != 2 {
		t.Errorf("expected assignee and leader as recipients, got %v", event.Recipients)
	}
}

func TestOverdueReminderJobRemindsOnce(t *testing.T) {
	db := newTestDB(t)
	dispatcher := &recordingDispatcher{}
	cfg := &config.Config{Task: config.TaskConfig{Interval: 60}}
	job := NewOverdueReminderJob(db, cfg, dispatcher)

	leader := model.User{Name: "leader", Email: "leader@example.com", PasswordHash: "x", Role: model.RoleTeamLeader}
	if err := db.Create(&leader).Error; err != nil {
		t.Fatalf("failed to create leader: %v", err)
	}
	project := model.Project{Title: "Website", TeamLeaderID: leader.ID}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	past := time.Now().Add(-24 * time.Hour)
	task := model.Task{
		ProjectID: project.ID, Title: "Overdue task", Status: model.StatusPending,
		AssignedBy: leader.ID, DueDate: &past,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	job.Execute()
	if len(dispatcher.events) != 1 {
		t.Fatalf("expected 1 event after first run, got %d", len(dispatcher.events))
	}

	// 落库后的重复执行不再提醒
	record := model.Notification{
		ID:         "n-1",
		UserID:     leader.ID,
		Kind:       model.NotificationOverdue,
		EntityKind: notify.EntityTask,
		EntityID:   task.ID,
		Message:    "The task 'Overdue task' is past its due date and is not completed.",
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("failed to store notification: %v", err)
	}

	job.Execute()
	if len(dispatcher.events) != 1 {
		t.Errorf("expected no additional events, got %d", len(dispatcher.events))
	}
}
