package ui

import (
	"fmt"
	"time"
)

// TimeLayout is the minute-precision layout used for start and end times.
const TimeLayout = "2006-01-02 15:04"

const clockLayout = "15:04"

// Placeholder is shown for values that are not set.
const Placeholder = "-"

// FormatMinutes formats a duration as hours and minutes, like "1h30m".
func FormatMinutes(duration *time.Duration) string {
	if duration == nil {
		return Placeholder
	}
	minutes := int64(duration.Truncate(time.Minute) / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh%dm", minutes/60, minutes%60)
}

// FormatTime formats a time in TimeLayout.
func FormatTime(value *time.Time) string {
	if value == nil {
		return Placeholder
	}
	return value.Format(TimeLayout)
}

// FormatWindow formats a start and end time as a single range, eliding the
// end date when both fall on the same day.
func FormatWindow(start, end *time.Time) string {
	if start == nil || end == nil {
		return Placeholder
	}
	if start.Format(time.DateOnly) == end.Format(time.DateOnly) {
		return fmt.Sprintf("%s-%s", start.Format(TimeLayout), end.Format(clockLayout))
	}
	return fmt.Sprintf("%s-%s", start.Format(TimeLayout), end.Format(TimeLayout))
}
