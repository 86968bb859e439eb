package constants

// DocumentStatus is the lifecycle state of an intake document.
type DocumentStatus string

const (
	DocumentStatusNew      DocumentStatus = "NEW"      // intake done, nothing derived yet
	DocumentStatusParsed   DocumentStatus = "PARSED"   // an event was derived from it
	DocumentStatusArchived DocumentStatus = "ARCHIVED" // retired
)

// EventStatus is the state of a docketed event.
type EventStatus string

const (
	EventStatusOpen   EventStatus = "OPEN"
	EventStatusClosed EventStatus = "CLOSED"
	EventStatusVoid   EventStatus = "VOID"
)

// DeadlineStatus is the state of a legal deadline.
type DeadlineStatus string

const (
	DeadlineStatusPending   DeadlineStatus = "PENDING"
	DeadlineStatusMet       DeadlineStatus = "MET"
	DeadlineStatusMissed    DeadlineStatus = "MISSED"
	DeadlineStatusCancelled DeadlineStatus = "CANCELLED"
)

// TaskStatus is the state of an internal work item.
type TaskStatus string

const (
	TaskStatusTodo      TaskStatus = "TODO"
	TaskStatusDoing     TaskStatus = "DOING"
	TaskStatusDone      TaskStatus = "DONE"
	TaskStatusCancelled TaskStatus = "CANCELLED"
	TaskStatusBlocked   TaskStatus = "BLOCKED"
)

// Priority orders tasks.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)
