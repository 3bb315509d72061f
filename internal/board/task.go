package board

import (
	"strings"

	"CRMDashboard/internal/domain"
)

// TaskFilter selects tasks on the tracking page.
type TaskFilter string

const (
	TasksAll        TaskFilter = "All"
	TasksPending    TaskFilter = "Pending"
	TasksInProgress TaskFilter = "InProgress"
	TasksCompleted  TaskFilter = "Completed"
)

// ParseTaskFilter is case-insensitive; anything unknown selects all tasks.
func ParseTaskFilter(value string) TaskFilter {
	for _, f := range []TaskFilter{TasksPending, TasksInProgress, TasksCompleted} {
		if strings.EqualFold(value, string(f)) {
			return f
		}
	}
	return TasksAll
}

// TaskProgress treats a missing progress as 0.
func TaskProgress(t domain.Task) float64 {
	if !t.Progress.IsSet() {
		return 0
	}
	return t.Progress.Value
}

// TaskStage names the stage a progress value falls in.
func TaskStage(progress float64) string {
	switch {
	case progress >= 100:
		return "Completed"
	case progress > 0:
		return "In Progress"
	}
	return "Pending"
}

// FilterTasks keeps tasks matching either their explicit status or their
// progress. Filters overlap: a PENDING task at 100% matches Pending and
// Completed.
func FilterTasks(tasks []domain.Task, f TaskFilter) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchTask(t, f) {
			out = append(out, t)
		}
	}
	return out
}

func matchTask(t domain.Task, f TaskFilter) bool {
	status := strings.ToUpper(t.Status.String())
	p := TaskProgress(t)

	switch f {
	case TasksPending:
		return status == "PENDING" || p == 0
	case TasksInProgress:
		return status == "IN_PROGRESS" || (p > 0 && p < 100)
	case TasksCompleted:
		return status == "COMPLETED" || p >= 100
	}
	return true
}
