package task

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/iamkhs/ProjectManagement/internal/config"
	"github.com/iamkhs/ProjectManagement/internal/logger"
	"github.com/iamkhs/ProjectManagement/internal/notify"
	"gorm.io/gorm"
)

// Job 定时任务接口
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler  gocron.Scheduler
	db         *gorm.DB
	dispatcher *notify.PoolDispatcher
	config     *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, dispatcher *notify.PoolDispatcher, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler:  s,
		db:         db,
		dispatcher: dispatcher,
		config:     cfg,
	}
}

// Start 启动任务管理器
func Start(db *gorm.DB, dispatcher *notify.PoolDispatcher, cfg *config.Config) *Manager {
	manager := NewManager(db, dispatcher, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	m.registerJob(NewOverdueReminderJob(m.db, m.config, m.dispatcher))

	// webhook未启用时无需重投
	if m.dispatcher.Webhook() != nil {
		m.registerJob(NewWebhookRedeliveryJob(m.db, m.config, m.dispatcher.Webhook()))
	}
}

// registerJob 注册单个任务
func (m *Manager) registerJob(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
