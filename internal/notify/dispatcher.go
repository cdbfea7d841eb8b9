package notify

import (
	"time"

	"github.com/iamkhs/ProjectManagement/internal/config"
	"github.com/iamkhs/ProjectManagement/internal/logger"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// Dispatcher 通知分发器。投递为尽力而为，失败不回滚触发它的状态变更。
type Dispatcher interface {
	Dispatch(event Event)
}

// PoolDispatcher 基于协程池的异步分发器
type PoolDispatcher struct {
	db      *gorm.DB
	pool    *ants.Pool
	webhook *WebhookSender // 为nil时只落库
}

// NewPoolDispatcher 创建分发器
func NewPoolDispatcher(db *gorm.DB, cfg config.NotifyConfig) (*PoolDispatcher, error) {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 8
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	var webhook *WebhookSender
	if cfg.WebhookURL != "" {
		webhook = NewWebhookSender(cfg.WebhookURL, time.Duration(cfg.Timeout)*time.Second)
	}

	return &PoolDispatcher{
		db:      db,
		pool:    pool,
		webhook: webhook,
	}, nil
}

// Dispatch 提交事件到协程池，调用方不等待投递结果
func (d *PoolDispatcher) Dispatch(event Event) {
	if len(event.Recipients) == 0 {
		return
	}

	if err := d.pool.Submit(func() {
		d.deliver(event)
	}); err != nil {
		logger.Error("Failed to submit notification event %s: %v", event.ID, err)
	}
}

// deliver 逐个接收人投递：先落库，再尝试webhook广播
func (d *PoolDispatcher) deliver(event Event) {
	for _, userID := range event.Recipients {
		// webhook未启用时直接视为已投递，避免重投任务空转
		record := event.notification(userID, d.webhook == nil)

		if err := d.db.Create(&record).Error; err != nil {
			logger.Error("Failed to store notification for user %d: %v", userID, err)
			continue
		}

		if d.webhook == nil {
			continue
		}

		if err := d.webhook.Send(&record); err != nil {
			// 留给重投任务处理
			logger.Warn("Webhook delivery failed for notification %s: %v", record.ID, err)
			continue
		}

		if err := d.db.Model(&record).Update("delivered", true).Error; err != nil {
			logger.Error("Failed to mark notification %s delivered: %v", record.ID, err)
		}
	}
}

// Webhook 返回底层的webhook发送器，重投任务复用
func (d *PoolDispatcher) Webhook() *WebhookSender {
	return d.webhook
}

// Release 释放协程池
func (d *PoolDispatcher) Release() {
	d.pool.Release()
}
