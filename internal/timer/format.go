package timer

import (
	"fmt"
	"time"

	"github.com/avolkov/tasktick/internal/models"
)

const (
	oneMinute = int64(60_000)
	oneHour   = 60 * oneMinute
	oneDay    = 24 * oneHour
	oneMonth  = 30 * oneDay
	oneYear   = 365 * oneDay
)

// InactiveTimerText is shown in the detail view when no timer is running.
const InactiveTimerText = "Timer inactive."

// TimeLeft returns the whole seconds until the task's deadline, zero when
// the deadline passed or no timer is armed.
func TimeLeft(task models.Task, now time.Time) int64 {
	if task.Deadline == nil {
		return 0
	}
	diff := *task.Deadline - now.UnixMilli()
	if diff <= 0 {
		return 0
	}
	return diff / 1000
}

// FuzzyDeadline renders the human-friendly list phrasing for an armed
// deadline, e.g. "in 5 min." or "Overdue since 2 hr.". The sub-minute
// range reads "now"; exactly one minute already counts as "1 min.".
func FuzzyDeadline(deadline int64, now time.Time) string {
	diff := deadline - now.UnixMilli()
	abs := diff
	if abs < 0 {
		abs = -abs
	}

	var text string
	switch {
	case abs < oneMinute:
		text = "now"
	case abs < oneHour:
		text = fmt.Sprintf("%d min.", ceilDiv(abs, oneMinute))
	case abs < oneDay:
		text = fmt.Sprintf("%d hr.", ceilDiv(abs, oneHour))
	case abs < oneMonth:
		text = fmt.Sprintf("%d day(s)", ceilDiv(abs, oneDay))
	case abs < oneYear:
		text = fmt.Sprintf("%d month(s) (approx.)", roundDiv(abs, oneMonth))
	default:
		text = fmt.Sprintf("%d year(s) (approx.)", roundDiv(abs, oneYear))
	}

	if diff < 0 {
		return "Overdue since " + text
	}
	return "in " + text
}

// FormatCountdown renders a non-negative number of whole seconds as a
// zero-padded countdown: HH:MM:SS from one hour up, MM:SS below. Zero
// seconds means no timer is running.
func FormatCountdown(seconds int64) string {
	if seconds <= 0 {
		return InactiveTimerText
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

func roundDiv(a, b int64) int64 {
	return (a + b/2) / b
}
