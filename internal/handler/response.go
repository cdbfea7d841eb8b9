package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamkhs/ProjectManagement/internal/logic"
	"github.com/iamkhs/ProjectManagement/internal/model"
	"github.com/iamkhs/ProjectManagement/internal/policy"
)

// ContextUserKey 认证中间件写入当前用户的键
const ContextUserKey = "current_user"

// CurrentUser 从请求上下文取出当前用户
func CurrentUser(c *gin.Context) *model.User {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*model.User)
	if !ok {
		return nil
	}
	return user
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"message": message,
		"status":  statusCode,
	})
}

// DomainErrorResponse 将领域错误映射为HTTP响应
func DomainErrorResponse(c *gin.Context, err error) {
	code := logic.HTTPStatus(err)
	message := err.Error()
	if code == http.StatusNotFound {
		message = "Resource not found."
	}
	ErrorResponse(c, code, message)
}

// Authorize 执行授权决策，拒绝时写出403并返回false
func Authorize(c *gin.Context, decision policy.Decision) bool {
	if decision.Allowed {
		return true
	}
	ErrorResponse(c, http.StatusForbidden, decision.Reason)
	return false
}
