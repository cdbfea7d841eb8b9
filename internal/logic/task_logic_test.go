package logic

import (
	"errors"
	"testing"

	"github.com/iamkhs/ProjectManagement/internal/model"
)

func TestCompleteTask(t *testing.T) {
	db := newTestDB(t)
	dispatcher := &recordingDispatcher{}
	taskLogic := NewTaskLogic(db, dispatcher)

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	member := createUser(t, db, "member", model.RoleTeamMember)
	project := createProject(t, db, leader, "Website")
	addMember(t, db, project.ID, member.ID)
	task := createTask(t, db, project, leader, "Design homepage")
	if err := db.Model(task).Update("assigned_to", member.ID).Error; err != nil {
		t.Fatalf("failed to assign task: %v", err)
	}

	completed, completedNow, err := taskLogic.CompleteTask(leader, task.ID)
	if err != nil {
		t.Fatalf("CompleteTask returned error: %v", err)
	}
	if !completedNow {
		t.Error("expected completedNow to be true on first completion")
	}
	if completed.Status != model.StatusCompleted {
		t.Errorf("expected status %q, got %q", model.StatusCompleted, completed.Status)
	}

	var stored model.Task
	if err := db.First(&stored, task.ID).Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if stored.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}

	if len(dispatcher.events) != 1 {
		t.Fatalf("expected 1 dispatched event, got %d", len(dispatcher.events))
	}
	event := dispatcher.events[0]
	if event.Kind != model.NotificationStatusChanged {
		t.Errorf("expected status_changed event, got %s", event.Kind)
	}
	if !containsRecipient(event.Recipients, member.ID) {
		t.Error("expected assignee to receive notification")
	}
	if containsRecipient(event.Recipients, leader.ID) {
		t.Error("expected actor to be excluded from recipients")
	}
}

func TestCompleteTaskAlreadyCompleted(t *testing.T) {
	db := newTestDB(t)
	dispatcher := &recordingDispatcher{}
	taskLogic := NewTaskLogic(db, dispatcher)

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	project := createProject(t, db, leader, "Website")
	task := createTask(t, db, project, leader, "Design homepage")

	if _, _, err := taskLogic.CompleteTask(leader, task.ID); err != nil {
		t.Fatalf("first CompleteTask returned error: %v", err)
	}

	var first model.Task
	if err := db.First(&first, task.ID).Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}

	_, completedNow, err := taskLogic.CompleteTask(leader, task.ID)
	if err != nil {
		t.Fatalf("second CompleteTask returned error: %v", err)
	}
	if completedNow {
		t.Error("expected completedNow to be false when already completed")
	}

	var second model.Task
	if err := db.First(&second, task.ID).Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if first.CompletedAt == nil || second.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
	if !first.CompletedAt.Equal(*second.CompletedAt) {
		t.Error("expected completed_at to be unchanged on repeated completion")
	}

	if len(dispatcher.events) != 1 {
		t.Errorf("expected repeated completion not to dispatch, got %d events", len(dispatcher.events))
	}
}

func TestCompleteTaskNotFound(t *testing.T) {
	db := newTestDB(t)
	taskLogic := NewTaskLogic(db, &recordingDispatcher{})

	leader := createUser(t, db, "leader", model.RoleTeamLeader)

	_, _, err := taskLogic.CompleteTask(leader, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTaskStatusMaintainsCompletionTimestamp(t *testing.T) {
	db := newTestDB(t)
	dispatcher := &recordingDispatcher{}
	taskLogic := NewTaskLogic(db, dispatcher)

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	project := createProject(t, db, leader, "Website")
	task := createTask(t, db, project, leader, "Design homepage")

	updated, err := taskLogic.UpdateTask(leader, task.ID, map[string]interface{}{
		"status": "completed",
	})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatal("expected completed_at to be set when status becomes completed")
	}

	// 重新打开任务应清空完成时间
	updated, err = taskLogic.UpdateTask(leader, task.ID, map[string]interface{}{
		"status": "in-progress",
	})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if updated.CompletedAt != nil {
		t.Error("expected completed_at to be cleared when task is reopened")
	}
	if updated.Status != model.StatusInProgress {
		t.Errorf("expected status %q, got %q", model.StatusInProgress, updated.Status)
	}

	if len(dispatcher.events) != 2 {
		t.Errorf("expected 2 status change events, got %d", len(dispatcher.events))
	}
}

func TestUpdateTaskInvalidStatus(t *testing.T) {
	db := newTestDB(t)
	taskLogic := NewTaskLogic(db, &recordingDispatcher{})

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	project := createProject(t, db, leader, "Website")
	task := createTask(t, db, project, leader, "Design homepage")

	_, err := taskLogic.UpdateTask(leader, task.ID, map[string]interface{}{
		"status": "done",
	})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestUpdateTaskWithoutStatusChangeDoesNotNotify(t *testing.T) {
	db := newTestDB(t)
	dispatcher := &recordingDispatcher{}
	taskLogic := NewTaskLogic(db, dispatcher)

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	project := createProject(t, db, leader, "Website")
	task := createTask(t, db, project, leader, "Design homepage")

	if _, err := taskLogic.UpdateTask(leader, task.ID, map[string]interface{}{
		"title": "Design landing page",
	}); err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}

	if len(dispatcher.events) != 0 {
		t.Errorf("expected no events for a title-only update, got %d", len(dispatcher.events))
	}
}

func TestAssignTaskRejectsNonTeamMember(t *testing.T) {
	db := newTestDB(t)
	taskLogic := NewTaskLogic(db, &recordingDispatcher{})

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	other := createUser(t, db, "other-leader", model.RoleTeamLeader)
	project := createProject(t, db, leader, "Website")
	task := createTask(t, db, project, leader, "Design homepage")

	_, err := taskLogic.AssignTask(leader, task.ID, other.ID)
	if !errors.Is(err, ErrOnlyTeamMembers) {
		t.Errorf("expected ErrOnlyTeamMembers, got %v", err)
	}
}

func TestAssignTaskRejectsNonProjectMember(t *testing.T) {
	db := newTestDB(t)
	taskLogic := NewTaskLogic(db, &recordingDispatcher{})

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	member := createUser(t, db, "member", model.RoleTeamMember)
	project := createProject(t, db, leader, "Website")
	task := createTask(t, db, project, leader, "Design homepage")

	// member未被加入项目
	_, err := taskLogic.AssignTask(leader, task.ID, member.ID)
	if !errors.Is(err, ErrNotProjectMember) {
		t.Errorf("expected ErrNotProjectMember, got %v", err)
	}
}

func TestAssignTask(t *testing.T) {
	db := newTestDB(t)
	dispatcher := &recordingDispatcher{}
	taskLogic := NewTaskLogic(db, dispatcher)

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	member := createUser(t, db, "member", model.RoleTeamMember)
	project := createProject(t, db, leader, "Website")
	addMember(t, db, project.ID, member.ID)
	task := createTask(t, db, project, leader, "Design homepage")

	assigned, err := taskLogic.AssignTask(leader, task.ID, member.ID)
	if err != nil {
		t.Fatalf("AssignTask returned error: %v", err)
	}
	if assigned.AssignedTo == nil || *assigned.AssignedTo != member.ID {
		t.Error("expected task to be assigned to the member")
	}
	if assigned.AssignedBy != leader.ID {
		t.Errorf("expected assigned_by %d, got %d", leader.ID, assigned.AssignedBy)
	}

	if len(dispatcher.events) != 1 {
		t.Fatalf("expected 1 dispatched event, got %d", len(dispatcher.events))
	}
	event := dispatcher.events[0]
	if event.Kind != model.NotificationAssigned {
		t.Errorf("expected assigned event, got %s", event.Kind)
	}
	if !containsRecipient(event.Recipients, member.ID) {
		t.Error("expected assignee to receive notification")
	}
}

func TestUnassignTaskWithoutAssignee(t *testing.T) {
	db := newTestDB(t)
	taskLogic := NewTaskLogic(db, &recordingDispatcher{})

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	project := createProject(t, db, leader, "Website")
	task := createTask(t, db, project, leader, "Design homepage")

	_, err := taskLogic.UnassignTask(task.ID)
	if !errors.Is(err, ErrNoAssignee) {
		t.Errorf("expected ErrNoAssignee, got %v", err)
	}
}

func TestUnassignTaskKeepsAssignedBy(t *testing.T) {
	db := newTestDB(t)
	taskLogic := NewTaskLogic(db, &recordingDispatcher{})

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	member := createUser(t, db, "member", model.RoleTeamMember)
	project := createProject(t, db, leader, "Website")
	addMember(t, db, project.ID, member.ID)
	task := createTask(t, db, project, leader, "Design homepage")

	if _, err := taskLogic.AssignTask(leader, task.ID, member.ID); err != nil {
		t.Fatalf("AssignTask returned error: %v", err)
	}

	unassigned, err := taskLogic.UnassignTask(task.ID)
	if err != nil {
		t.Fatalf("UnassignTask returned error: %v", err)
	}
	if unassigned.AssignedTo != nil {
		t.Error("expected assigned_to to be cleared")
	}

	var stored model.Task
	if err := db.First(&stored, task.ID).Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if stored.AssignedTo != nil {
		t.Error("expected assigned_to to be cleared in storage")
	}
	if stored.AssignedBy != leader.ID {
		t.Errorf("expected assigned_by to stay %d, got %d", leader.ID, stored.AssignedBy)
	}
}

func TestMemberStatusUpdateNotifiesLeaderOnly(t *testing.T) {
	db := newTestDB(t)
	dispatcher := &recordingDispatcher{}
	taskLogic := NewTaskLogic(db, dispatcher)

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	member := createUser(t, db, "member", model.RoleTeamMember)
	project := createProject(t, db, leader, "Website")
	addMember(t, db, project.ID, member.ID)
	task := createTask(t, db, project, leader, "Design homepage")
	if err := db.Model(task).Update("assigned_to", member.ID).Error; err != nil {
		t.Fatalf("failed to assign task: %v", err)
	}

	// 被指派的成员自己更新状态，不应收到自己的通知
	if _, err := taskLogic.UpdateTask(member, task.ID, map[string]interface{}{
		"status": "in-progress",
	}); err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}

	if len(dispatcher.events) != 1 {
		t.Fatalf("expected 1 dispatched event, got %d", len(dispatcher.events))
	}
	event := dispatcher.events[0]
	if containsRecipient(event.Recipients, member.ID) {
		t.Error("expected the acting member to be excluded from recipients")
	}
	if !containsRecipient(event.Recipients, leader.ID) {
		t.Error("expected the team leader to receive the notification")
	}
}

func TestCreateTaskRequiresExistingProject(t *testing.T) {
	db := newTestDB(t)
	taskLogic := NewTaskLogic(db, &recordingDispatcher{})

	leader := createUser(t, db, "leader", model.RoleTeamLeader)

	err := taskLogic.CreateTask(leader, &model.Task{ProjectID: 42, Title: "Orphan"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateTaskValidatesAssignee(t *testing.T) {
	db := newTestDB(t)
	taskLogic := NewTaskLogic(db, &recordingDispatcher{})

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	otherLeader := createUser(t, db, "other-leader", model.RoleTeamLeader)
	outsider := createUser(t, db, "outsider", model.RoleTeamMember)
	member := createUser(t, db, "member", model.RoleTeamMember)
	project := createProject(t, db, leader, "Website")
	addMember(t, db, project.ID, member.ID)

	// 不存在的用户
	ghost := uint(9999)
	err := taskLogic.CreateTask(leader, &model.Task{
		ProjectID: project.ID, Title: "Design homepage", AssignedTo: &ghost,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown assignee, got %v", err)
	}

	// 角色不是team_member
	err = taskLogic.CreateTask(leader, &model.Task{
		ProjectID: project.ID, Title: "Design homepage", AssignedTo: &otherLeader.ID,
	})
	if !errors.Is(err, ErrOnlyTeamMembers) {
		t.Errorf("expected ErrOnlyTeamMembers, got %v", err)
	}

	// 不是项目成员
	err = taskLogic.CreateTask(leader, &model.Task{
		ProjectID: project.ID, Title: "Design homepage", AssignedTo: &outsider.ID,
	})
	if !errors.Is(err, ErrNotProjectMember) {
		t.Errorf("expected ErrNotProjectMember, got %v", err)
	}

	var count int64
	if err := db.Model(&model.Task{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count tasks: %v", err)
	}
	if count != 0 {
		t.Errorf("expected rejected tasks not to be persisted, found %d", count)
	}

	// 合法的项目成员可以在创建时直接指派
	task := model.Task{ProjectID: project.ID, Title: "Design homepage", AssignedTo: &member.ID}
	if err := taskLogic.CreateTask(leader, &task); err != nil {
		t.Fatalf("CreateTask returned error for valid assignee: %v", err)
	}

	var stored model.Task
	if err := db.First(&stored, task.ID).Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if stored.AssignedTo == nil || *stored.AssignedTo != member.ID {
		t.Error("expected task to be assigned to the member")
	}
}

func TestGetTasksByProjectPagination(t *testing.T) {
	db := newTestDB(t)
	taskLogic := NewTaskLogic(db, &recordingDispatcher{})

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	project := createProject(t, db, leader, "Website")
	for i := 0; i < 5; i++ {
		createTask(t, db, project, leader, "Task")
	}

	tasks, total, err := taskLogic.GetTasksByProject(project.ID, 2, 2)
	if err != nil {
		t.Fatalf("GetTasksByProject returned error: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(tasks) != 2 {
		t.Errorf("expected 2 tasks on page 2, got %d", len(tasks))
	}
}
