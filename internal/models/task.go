package models

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is the sole entity of the tracker. Deadline is milliseconds since
// epoch; a nil deadline means no timer is armed for the task.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority"`
	Note      string `json:"note"`
	Deadline  *int64 `json:"deadline"`
}

func (t *Task) TimerArmed() bool {
	return t.Deadline != nil
}

func ValidPriority(priority string) bool {
	return priority == PriorityLow ||
		priority == PriorityMedium ||
		priority == PriorityHigh
}
