package main

import (
	"github.com/gin-gonic/gin"
	"github.com/iamkhs/ProjectManagement/internal/config"
	"github.com/iamkhs/ProjectManagement/internal/database"
	"github.com/iamkhs/ProjectManagement/internal/logger"
	"github.com/iamkhs/ProjectManagement/internal/notify"
	"github.com/iamkhs/ProjectManagement/internal/router"
	"github.com/iamkhs/ProjectManagement/internal/task"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	initLogger(cfg.Log)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 写入初始用户
	if err := database.Seed(db); err != nil {
		logger.Fatal("Failed to seed database: %v", err)
	}

	// 初始化通知分发器
	dispatcher, err := notify.NewPoolDispatcher(db, cfg.Notify)
	if err != nil {
		logger.Fatal("Failed to initialize notification dispatcher: %v", err)
	}
	defer dispatcher.Release()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, dispatcher, cfg)

	// 启动定时任务
	manager := task.Start(db, dispatcher, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

// initLogger 根据配置初始化默认日志器
func initLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	var (
		l   *logger.Logger
		err error
	)
	if cfg.Output == "file" {
		l, err = logger.NewWithFileRotation(level, cfg.File)
	} else {
		l, err = logger.New(level)
	}
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}

	logger.SetDefaultLogger(l)
}
