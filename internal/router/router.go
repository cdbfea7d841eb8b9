package router

import (
	"github.com/gin-gonic/gin"
	"github.com/iamkhs/ProjectManagement/internal/config"
	"github.com/iamkhs/ProjectManagement/internal/handler"
	"github.com/iamkhs/ProjectManagement/internal/notify"
	"gorm.io/gorm"
)

// Setup 初始化路由
func Setup(db *gorm.DB, dispatcher notify.Dispatcher, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "project-management",
		})
	})

	// API版本组，业务路由全部要求认证
	v1 := r.Group("/api/v1")
	v1.Use(AuthMiddleware(db, cfg.Auth))
	{
		// 项目相关路由
		projectHandler := handler.NewProjectHandler(db)
		projects := v1.Group("/projects")
		{
			projects.GET("", projectHandler.GetProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.PATCH("/:id/assign", projectHandler.AssignMember)
			projects.PATCH("/:id/unassign", projectHandler.UnassignMember)
		}

		// 任务相关路由
		taskHandler := handler.NewTaskHandler(db, dispatcher)
		subTaskHandler := handler.NewSubTaskHandler(db, dispatcher)
		tasks := v1.Group("/tasks")
		{
			tasks.GET("/project/:id", taskHandler.GetTasksByProject)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.PATCH("/:id/complete", taskHandler.CompleteTask)
			tasks.PATCH("/:id/assign", taskHandler.AssignTask)
			tasks.PATCH("/:id/unassign", taskHandler.UnassignTask)
			tasks.GET("/:id/subtasks", subTaskHandler.GetSubTasksByTask)
			tasks.POST("/:id/subtasks", subTaskHandler.CreateSubTask)
		}

		// 子任务相关路由
		subtasks := v1.Group("/subtasks")
		{
			subtasks.GET("/:id", subTaskHandler.GetSubTask)
			subtasks.PUT("/:id", subTaskHandler.UpdateSubTask)
			subtasks.DELETE("/:id", subTaskHandler.DeleteSubTask)
			subtasks.PATCH("/:id/complete", subTaskHandler.CompleteSubTask)
			subtasks.PATCH("/:id/assign", subTaskHandler.AssignSubTask)
			subtasks.PATCH("/:id/unassign", subTaskHandler.UnassignSubTask)
		}

		// 报表相关路由
		reportHandler := handler.NewReportHandler(db)
		reports := v1.Group("/reports")
		{
			reports.GET("/projects", reportHandler.GenerateProjectReport)
			reports.GET("/projects/export", reportHandler.ExportProjectReport)
		}

		// 通知相关路由
		notificationHandler := handler.NewNotificationHandler(db)
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.PATCH("/:id/read", notificationHandler.MarkNotificationRead)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
