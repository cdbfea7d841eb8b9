package policy

import (
	"testing"

	"github.com/iamkhs/ProjectManagement/internal/model"
)

func TestDisallowedUpdateFieldsForMember(t *testing.T) {
	updates := map[string]interface{}{"status": "in-progress"}
	if denied := DisallowedUpdateFields(model.RoleTeamMember, updates); len(denied) != 0 {
		t.Errorf("expected status-only update to be allowed, denied: %v", denied)
	}

	updates = map[string]interface{}{
		"status":      "in-progress",
		"title":       "New title",
		"description": "New description",
	}
	denied := DisallowedUpdateFields(model.RoleTeamMember, updates)
	if len(denied) != 2 {
		t.Errorf("expected title and description to be denied, got %v", denied)
	}
}

func TestDisallowedUpdateFieldsUnrestrictedRoles(t *testing.T) {
	updates := map[string]interface{}{
		"status": "completed",
		"title":  "New title",
	}

	if denied := DisallowedUpdateFields(model.RoleAdmin, updates); len(denied) != 0 {
		t.Errorf("expected admin to be unrestricted, denied: %v", denied)
	}
	if denied := DisallowedUpdateFields(model.RoleTeamLeader, updates); len(denied) != 0 {
		t.Errorf("expected team leader to be unrestricted, denied: %v", denied)
	}
}

func TestDisallowedUpdateFieldsUnknownRole(t *testing.T) {
	updates := map[string]interface{}{"status": "completed"}
	if denied := DisallowedUpdateFields(model.Role("guest"), updates); len(denied) != 1 {
		t.Errorf("expected unknown role to be denied everything, got %v", denied)
	}
}
