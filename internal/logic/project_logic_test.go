package logic

import (
	"errors"
	"net/http"
	"testing"

	"github.com/iamkhs/ProjectManagement/internal/model"
)

func TestCreateProjectSetsTeamLeader(t *testing.T) {
	db := newTestDB(t)
	projectLogic := NewProjectLogic(db)

	leader := createUser(t, db, "leader", model.RoleTeamLeader)

	project := model.Project{Title: "Website"}
	if err := projectLogic.CreateProject(leader, &project); err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}
	if project.TeamLeaderID != leader.ID {
		t.Errorf("expected team_leader_id %d, got %d", leader.ID, project.TeamLeaderID)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	db := newTestDB(t)
	projectLogic := NewProjectLogic(db)

	_, err := projectLogic.GetProject(999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignMemberDuplicateIsNoOp(t *testing.T) {
	db := newTestDB(t)
	projectLogic := NewProjectLogic(db)

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	member := createUser(t, db, "member", model.RoleTeamMember)
	project := createProject(t, db, leader, "Website")

	first, err := projectLogic.AssignMember(project.ID, member.ID)
	if err != nil {
		t.Fatalf("AssignMember returned error: %v", err)
	}
	if first == nil {
		t.Fatal("expected a member record on first assignment")
	}

	second, err := projectLogic.AssignMember(project.ID, member.ID)
	if err != nil {
		t.Fatalf("repeated AssignMember returned error: %v", err)
	}
	if second != nil {
		t.Error("expected nil member on repeated assignment")
	}

	var count int64
	if err := db.Model(&model.ProjectMember{}).
		Where("project_id = ?", project.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count members: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 membership row, got %d", count)
	}
}

func TestAssignMemberUnknownUser(t *testing.T) {
	db := newTestDB(t)
	projectLogic := NewProjectLogic(db)

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	project := createProject(t, db, leader, "Website")

	_, err := projectLogic.AssignMember(project.ID, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUnassignMemberNotAMember(t *testing.T) {
	db := newTestDB(t)
	projectLogic := NewProjectLogic(db)

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	member := createUser(t, db, "member", model.RoleTeamMember)
	project := createProject(t, db, leader, "Website")

	err := projectLogic.UnassignMember(project.ID, member.ID)
	if err == nil {
		t.Fatal("expected error when unassigning a non-member")
	}
	if HTTPStatus(err) != http.StatusBadRequest {
		t.Errorf("expected 400 mapping, got %d", HTTPStatus(err))
	}
	if err.Error() != "User is not a member of this project." {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestDeleteProjectNotFound(t *testing.T) {
	db := newTestDB(t)
	projectLogic := NewProjectLogic(db)

	if err := projectLogic.DeleteProject(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIsMember(t *testing.T) {
	db := newTestDB(t)
	projectLogic := NewProjectLogic(db)

	leader := createUser(t, db, "leader", model.RoleTeamLeader)
	member := createUser(t, db, "member", model.RoleTeamMember)
	outsider := createUser(t, db, "outsider", model.RoleTeamMember)
	project := createProject(t, db, leader, "Website")
	addMember(t, db, project.ID, member.ID)

	isMember, err := projectLogic.IsMember(project.ID, member.ID)
	if err != nil {
		t.Fatalf("IsMember returned error: %v", err)
	}
	if !isMember {
		t.Error("expected member to be reported as project member")
	}

	isMember, err = projectLogic.IsMember(project.ID, outsider.ID)
	if err != nil {
		t.Fatalf("IsMember returned error: %v", err)
	}
	if isMember {
		t.Error("expected outsider not to be reported as project member")
	}
}
