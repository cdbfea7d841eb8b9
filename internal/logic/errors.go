package logic

import (
	"errors"
	"net/http"
)

// ErrNotFound 实体不存在
var ErrNotFound = errors.New("resource not found")

// StatusError 携带HTTP语义状态码的领域错误。
// 底层持久化失败在服务边界被记录日志后包装为500级别的StatusError，
// 对外不暴露内部细节。
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// NewStatusError 创建领域错误
func NewStatusError(code int, message string) *StatusError {
	return &StatusError{Code: code, Message: message}
}

// 预定义的领域冲突
var (
	ErrOnlyTeamMembers  = NewStatusError(http.StatusForbidden, "Only Team Members can be assigned to tasks.")
	ErrNotProjectMember = NewStatusError(http.StatusForbidden, "User is not part of this project.")
	ErrNoAssignee       = NewStatusError(http.StatusBadRequest, "No user is currently assigned to this task.")
	ErrInvalidStatus    = NewStatusError(http.StatusUnprocessableEntity, "Invalid status value.")
)

// HTTPStatus 将领域错误映射为HTTP状态码
func HTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}

	return http.StatusInternalServerError
}
