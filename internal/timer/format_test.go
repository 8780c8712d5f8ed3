package timer

import (
	"testing"
	"time"

	"github.com/avolkov/tasktick/internal/models"
)

func TestFuzzyDeadline(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	tests := []struct {
		name   string
		diffMs int64
		want   string
	}{
		{name: "sub-minute reads now", diffMs: 45_000, want: "in now"},
		{name: "exactly one minute", diffMs: 60_000, want: "in 1 min."},
		{name: "minutes round up", diffMs: 61_000, want: "in 2 min."},
		{name: "just under an hour", diffMs: oneHour - 1, want: "in 60 min."},
		{name: "hours round up", diffMs: 90 * oneMinute, want: "in 2 hr."},
		{name: "days round up", diffMs: 36 * oneHour, want: "in 2 day(s)"},
		{name: "months are approximate", diffMs: 45 * oneDay, want: "in 2 month(s) (approx.)"},
		{name: "months round down below half", diffMs: 44 * oneDay, want: "in 1 month(s) (approx.)"},
		{name: "years are approximate", diffMs: 400 * oneDay, want: "in 1 year(s) (approx.)"},
		{name: "overdue minutes", diffMs: -5 * oneMinute, want: "Overdue since 5 min."},
		{name: "overdue sub-minute", diffMs: -30_000, want: "Overdue since now"},
		{name: "overdue hours", diffMs: -3 * oneHour, want: "Overdue since 3 hr."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FuzzyDeadline(now.UnixMilli()+tt.diffMs, now)
			if got != tt.want {
				t.Errorf("FuzzyDeadline(%+d ms) = %q, want %q", tt.diffMs, got, tt.want)
			}
		})
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{seconds: 0, want: InactiveTimerText},
		{seconds: 5, want: "00:05"},
		{seconds: 90, want: "01:30"},
		{seconds: 3599, want: "59:59"},
		{seconds: 3600, want: "01:00:00"},
		{seconds: 3661, want: "01:01:01"},
		{seconds: 86400, want: "24:00:00"},
	}

	for _, tt := range tests {
		got := FormatCountdown(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatCountdown(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestTimeLeft(t *testing.T) {
	now := time.UnixMilli(1_000_000)

	idle := models.Task{ID: "idle"}
	if got := TimeLeft(idle, now); got != 0 {
		t.Errorf("TimeLeft(idle) = %d, want 0", got)
	}

	deadline := now.UnixMilli() + 90_500
	armed := models.Task{ID: "armed", Deadline: &deadline}
	if got := TimeLeft(armed, now); got != 90 {
		t.Errorf("TimeLeft(armed) = %d, want 90", got)
	}

	past := now.UnixMilli() - 10_000
	overdue := models.Task{ID: "overdue", Deadline: &past}
	if got := TimeLeft(overdue, now); got != 0 {
		t.Errorf("TimeLeft(overdue) = %d, want 0", got)
	}
}
