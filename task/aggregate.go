package task

import "time"

// epicAggregate holds the fields an epic derives from its subtasks.
type epicAggregate struct {
	status   Status
	duration *time.Duration
	start    *time.Time
	end      *time.Time
}

// aggregateSubtasks computes an epic's derived fields from scratch.
func aggregateSubtasks(subtasks []*Subtask) epicAggregate {
	result := epicAggregate{status: StatusNew}
	if len(subtasks) == 0 {
		return result
	}

	allNew, allDone := true, true
	for _, sub := range subtasks {
		if sub.Status != StatusNew {
			allNew = false
		}
		if sub.Status != StatusDone {
			allDone = false
		}

		if sub.Duration != nil {
			total := *sub.Duration
			if result.duration != nil {
				total += *result.duration
			}
			result.duration = &total
		}
		if sub.StartTime != nil && (result.start == nil || sub.StartTime.Before(*result.start)) {
			result.start = copyPtr(sub.StartTime)
		}
		if end := sub.EndTime(); end != nil && (result.end == nil || end.After(*result.end)) {
			result.end = end
		}
	}

	switch {
	case allNew:
		result.status = StatusNew
	case allDone:
		result.status = StatusDone
	default:
		result.status = StatusInProgress
	}
	return result
}

func (a epicAggregate) applyTo(epic *Epic) {
	epic.Status = a.status
	epic.Duration = a.duration
	epic.StartTime = a.start
	epic.endTime = a.end
}
