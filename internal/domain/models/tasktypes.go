package models

// Canonical task status identifiers.
//
// The workflow is ToDo → InProgress → Done by convention; the API accepts
// any transition between canonical statuses but rejects values outside
// the set before writing.
const (
	TaskStatusToDo       = "ToDo" // default for new tasks
	TaskStatusInProgress = "InProgress"
	TaskStatusDone       = "Done"
)

// TaskStatuses is the full set of allowed task status identifiers, in
// workflow order.
var TaskStatuses = []string{
	TaskStatusToDo,
	TaskStatusInProgress,
	TaskStatusDone,
}

// ValidTaskStatus reports whether status is one of the canonical identifiers.
func ValidTaskStatus(status string) bool {
	for _, s := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Canonical task priority identifiers.
const (
	TaskPriorityLow    = "Low"
	TaskPriorityMedium = "Medium" // default for new tasks
	TaskPriorityHigh   = "High"
)

// TaskPriorities is the full set of allowed task priority identifiers.
var TaskPriorities = []string{
	TaskPriorityLow,
	TaskPriorityMedium,
	TaskPriorityHigh,
}

// ValidTaskPriority reports whether priority is one of the canonical
// identifiers. The empty string is allowed (priority is optional).
func ValidTaskPriority(priority string) bool {
	if priority == "" {
		return true
	}
	for _, p := range TaskPriorities {
		if p == priority {
			return true
		}
	}
	return false
}
