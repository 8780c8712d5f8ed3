package view

import (
	"reflect"
	"testing"

	"github.com/avolkov/tasktick/internal/models"
)

func TestVisible(t *testing.T) {
	tasks := []models.Task{
		{ID: "a", Text: "open one"},
		{ID: "b", Text: "done one", Completed: true},
		{ID: "c", Text: "open two"},
		{ID: "d", Text: "done two", Completed: true},
	}

	tests := []struct {
		name    string
		mode    string
		wantIDs []string
	}{
		{name: "all", mode: FilterAll, wantIDs: []string{"a", "b", "c", "d"}},
		{name: "open", mode: FilterOpen, wantIDs: []string{"a", "c"}},
		{name: "completed", mode: FilterCompleted, wantIDs: []string{"b", "d"}},
		{name: "unknown mode falls back to all", mode: "starred", wantIDs: []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible := Visible(tasks, tt.mode)

			gotIDs := make([]string, len(visible))
			for i, task := range visible {
				gotIDs[i] = task.ID
			}
			if !reflect.DeepEqual(gotIDs, tt.wantIDs) {
				t.Errorf("Visible(%q) ids = %v, want %v", tt.mode, gotIDs, tt.wantIDs)
			}
		})
	}
}

func TestVisibleEmpty(t *testing.T) {
	for _, mode := range []string{FilterAll, FilterOpen, FilterCompleted, "anything"} {
		if got := Visible(nil, mode); len(got) != 0 {
			t.Errorf("Visible(nil, %q) = %v, want empty", mode, got)
		}
	}
}
