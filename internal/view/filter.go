package view

import "github.com/avolkov/tasktick/internal/models"

const (
	FilterAll       = "all"
	FilterOpen      = "open"
	FilterCompleted = "completed"
)

// Visible projects the subset of tasks matching the filter mode, keeping
// insertion order. An unknown mode falls back to showing everything.
func Visible(tasks []models.Task, mode string) []models.Task {
	visible := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		switch mode {
		case FilterOpen:
			if task.Completed {
				continue
			}
		case FilterCompleted:
			if !task.Completed {
				continue
			}
		}
		visible = append(visible, task)
	}
	return visible
}
