package notify

import (
	"testing"

	"github.com/iamkhs/ProjectManagement/internal/model"
)

func TestNewAssignedEventSuppressesActor(t *testing.T) {
	event := NewAssignedEvent(EntityTask, 1, "Design homepage", 2, []uint{3, 2})

	if len(event.Recipients) != 1 {
		t.Fatalf("expected 1 recipient, got %d", len(event.Recipients))
	}
	if event.Recipients[0] != 3 {
		t.Errorf("expected recipient 3, got %d", event.Recipients[0])
	}
}

func TestRecipientDeduplication(t *testing.T) {
	event := NewStatusChangedEvent(EntityTask, 1, "Design homepage",
		model.StatusPending, model.StatusInProgress, 9, []uint{3, 3, 0, 5, 3})

	if len(event.Recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %d: %v", len(event.Recipients), event.Recipients)
	}
	if event.Recipients[0] != 3 || event.Recipients[1] != 5 {
		t.Errorf("expected recipients [3 5], got %v", event.Recipients)
	}
}

func TestEventMessage(t *testing.T) {
	assigned := NewAssignedEvent(EntityTask, 1, "Design homepage", 2, []uint{3})
	want := "A new task 'Design homepage' has been assigned to you."
	if got := assigned.Message(); got != want {
		t.Errorf("assigned message mismatch:\n got: %s\nwant: %s", got, want)
	}

	changed := NewStatusChangedEvent(EntitySubTask, 1, "Pick a palette",
		model.StatusPending, model.StatusCompleted, 2, []uint{3})
	want = "The status of subtask 'Pick a palette' has been changed from 'pending' to 'completed'."
	if got := changed.Message(); got != want {
		t.Errorf("status message mismatch:\n got: %s\nwant: %s", got, want)
	}

	overdue := NewOverdueEvent(EntityTask, 1, "Design homepage", []uint{3})
	want = "The task 'Design homepage' is past its due date and is not completed."
	if got := overdue.Message(); got != want {
		t.Errorf("overdue message mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestEventIDsAreUnique(t *testing.T) {
	a := NewOverdueEvent(EntityTask, 1, "Design homepage", []uint{3})
	b := NewOverdueEvent(EntityTask, 1, "Design homepage", []uint{3})

	if a.ID == "" || a.ID == b.ID {
		t.Error("expected distinct non-empty event IDs")
	}
}
