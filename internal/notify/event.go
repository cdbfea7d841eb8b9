package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iamkhs/ProjectManagement/internal/model"
)

// EntityTask 任务实体
const EntityTask = "task"

// EntitySubTask 子任务实体
const EntitySubTask = "subtask"

// Event 一次状态变更或指派产生的通知事件
type Event struct {
	ID         string
	Kind       model.NotificationKind
	EntityKind string // task / subtask
	EntityID   uint
	Title      string
	OldStatus  model.Status
	NewStatus  model.Status
	ActorID    uint   // 触发事件的用户，自通知会被抑制
	Recipients []uint // 去重后的接收人
}

// NewAssignedEvent 构造指派事件
func NewAssignedEvent(entityKind string, entityID uint, title string, actorID uint, recipients []uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       model.NotificationAssigned,
		EntityKind: entityKind,
		EntityID:   entityID,
		Title:      title,
		ActorID:    actorID,
		Recipients: dedupe(recipients, actorID),
	}
}

// NewStatusChangedEvent 构造状态变更事件
func NewStatusChangedEvent(entityKind string, entityID uint, title string, oldStatus, newStatus model.Status, actorID uint, recipients []uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       model.NotificationStatusChanged,
		EntityKind: entityKind,
		EntityID:   entityID,
		Title:      title,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		ActorID:    actorID,
		Recipients: dedupe(recipients, actorID),
	}
}

// NewOverdueEvent 构造逾期提醒事件，定时任务触发，无触发用户
func NewOverdueEvent(entityKind string, entityID uint, title string, recipients []uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       model.NotificationOverdue,
		EntityKind: entityKind,
		EntityID:   entityID,
		Title:      title,
		Recipients: dedupe(recipients, 0),
	}
}

// Message 生成通知文案
func (e Event) Message() string {
	switch e.Kind {
	case model.NotificationAssigned:
		return fmt.Sprintf("A new %s '%s' has been assigned to you.", e.EntityKind, e.Title)
	case model.NotificationStatusChanged:
		return fmt.Sprintf("The status of %s '%s' has been changed from '%s' to '%s'.",
			e.EntityKind, e.Title, e.OldStatus, e.NewStatus)
	case model.NotificationOverdue:
		return fmt.Sprintf("The %s '%s' is past its due date and is not completed.", e.EntityKind, e.Title)
	}
	return fmt.Sprintf("Update on %s '%s'.", e.EntityKind, e.Title)
}

// notification 为单个接收人生成落库记录
func (e Event) notification(userID uint, delivered bool) model.Notification {
	return model.Notification{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		UserID:     userID,
		Kind:       e.Kind,
		Message:    e.Message(),
		EntityKind: e.EntityKind,
		EntityID:   e.EntityID,
		OldStatus:  string(e.OldStatus),
		NewStatus:  string(e.NewStatus),
		Delivered:  delivered,
	}
}

// dedupe 去重接收人并抑制自通知
func dedupe(recipients []uint, actorID uint) []uint {
	seen := make(map[uint]bool, len(recipients))
	out := make([]uint, 0, len(recipients))
	for _, id := range recipients {
		if id == 0 || id == actorID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
