package task

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/iamkhs/ProjectManagement/internal/config"
	"github.com/iamkhs/ProjectManagement/internal/logger"
	"github.com/iamkhs/ProjectManagement/internal/model"
	"github.com/iamkhs/ProjectManagement/internal/notify"
	"gorm.io/gorm"
)

// OverdueReminderJob 逾期提醒任务，扫描超过截止时间且未完成的任务和子任务
type OverdueReminderJob struct {
	db         *gorm.DB
	config     *config.Config
	dispatcher notify.Dispatcher
}

// NewOverdueReminderJob 创建逾期提醒任务
func NewOverdueReminderJob(db *gorm.DB, cfg *config.Config, dispatcher notify.Dispatcher) *OverdueReminderJob {
	return &OverdueReminderJob{
		db:         db,
		config:     cfg,
		dispatcher: dispatcher,
	}
}

// GetName 获取任务名称
func (j *OverdueReminderJob) GetName() string {
	return "overdue_reminder"
}

// GetSchedule 获取任务调度配置
func (j *OverdueReminderJob) GetSchedule() gocron.JobDefinition {
	interval := j.config.Task.Interval
	if interval <= 0 {
		interval = 60
	}
	return gocron.DurationJob(time.Duration(interval) * time.Second)
}

// Execute 执行任务
func (j *OverdueReminderJob) Execute() {
	now := time.Now()
	j.remindTasks(now)
	j.remindSubTasks(now)
}

// remindTasks 处理逾期的任务
func (j *OverdueReminderJob) remindTasks(now time.Time) {
	var tasks []model.Task
	if err := j.db.Preload("Project").
		Where("due_date IS NOT NULL AND due_date < ? AND status != ?", now, model.StatusCompleted).
		Find(&tasks).Error; err != nil {
		logger.Error("Failed to load overdue tasks: %v", err)
		return
	}

	for _, t := range tasks {
		if j.alreadyReminded(notify.EntityTask, t.ID) {
			continue
		}

		var recipients []uint
		if t.Project != nil {
			recipients = append(recipients, t.Project.TeamLeaderID)
		}
		if t.AssignedTo != nil {
			recipients = append(recipients, *t.AssignedTo)
		}

		j.dispatcher.Dispatch(notify.NewOverdueEvent(notify.EntityTask, t.ID, t.Title, recipients))
		logger.Info("Dispatched overdue reminder for task %d", t.ID)
	}
}

// remindSubTasks 处理逾期的子任务
func (j *OverdueReminderJob) remindSubTasks(now time.Time) {
	var subTasks []model.SubTask
	if err := j.db.Preload("Task.Project").
		Where("due_date IS NOT NULL AND due_date < ? AND status != ?", now, model.StatusCompleted).
		Find(&subTasks).Error; err != nil {
		logger.Error("Failed to load overdue subtasks: %v", err)
		return
	}

	for _, st := range subTasks {
		if j.alreadyReminded(notify.EntitySubTask, st.ID) {
			continue
		}

		var recipients []uint
		if st.Task != nil && st.Task.Project != nil {
			recipients = append(recipients, st.Task.Project.TeamLeaderID)
		}
		if st.AssignedTo != nil {
			recipients = append(recipients, *st.AssignedTo)
		}

		j.dispatcher.Dispatch(notify.NewOverdueEvent(notify.EntitySubTask, st.ID, st.Title, recipients))
		logger.Info("Dispatched overdue reminder for subtask %d", st.ID)
	}
}

// alreadyReminded 同一实体只提醒一次
func (j *OverdueReminderJob) alreadyReminded(entityKind string, entityID uint) bool {
	var count int64
	if err := j.db.Model(&model.Notification{}).
		Where("kind = ? AND entity_kind = ? AND entity_id = ?", model.NotificationOverdue, entityKind, entityID).
		Count(&count).Error; err != nil {
		logger.Error("Failed to check reminder history for %s %d: %v", entityKind, entityID, err)
		return true
	}
	return count > 0
}
