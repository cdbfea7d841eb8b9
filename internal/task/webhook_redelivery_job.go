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

// redeliveryBatchSize 单次重投的最大数量
const redeliveryBatchSize = 100

// WebhookRedeliveryJob webhook重投任务，重试落库后未成功广播的通知
type WebhookRedeliveryJob struct {
	db      *gorm.DB
	config  *config.Config
	webhook *notify.WebhookSender
}

// NewWebhookRedeliveryJob 创建webhook重投任务
func NewWebhookRedeliveryJob(db *gorm.DB, cfg *config.Config, webhook *notify.WebhookSender) *WebhookRedeliveryJob {
	return &WebhookRedeliveryJob{
		db:      db,
		config:  cfg,
		webhook: webhook,
	}
}

// GetName 获取任务名称
func (j *WebhookRedeliveryJob) GetName() string {
	return "webhook_redelivery"
}

// GetSchedule 获取任务调度配置
func (j *WebhookRedeliveryJob) GetSchedule() gocron.JobDefinition {
	interval := j.config.Task.Interval
	if interval <= 0 {
		interval = 60
	}
	return gocron.DurationJob(time.Duration(interval) * time.Second)
}

// Execute 执行任务
func (j *WebhookRedeliveryJob) Execute() {
	var pending []model.Notification
	if err := j.db.Where("delivered = ?", false).
		Order("created_at ASC").
		Limit(redeliveryBatchSize).
		Find(&pending).Error; err != nil {
		logger.Error("Failed to load undelivered notifications: %v", err)
		return
	}

	if len(pending) == 0 {
		return
	}

	delivered := 0
	for i := range pending {
		record := &pending[i]

		if err := j.webhook.Send(record); err != nil {
			// 熔断器打开时后续发送会立即失败，留到下一轮
			logger.Warn("Redelivery failed for notification %s: %v", record.ID, err)
			continue
		}

		if err := j.db.Model(record).Update("delivered", true).Error; err != nil {
			logger.Error("Failed to mark notification %s delivered: %v", record.ID, err)
			continue
		}
		delivered++
	}

	logger.Info("Webhook redelivery finished: %d/%d delivered", delivered, len(pending))
}
