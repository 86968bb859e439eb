package entity

import (
	"time"

	"github.com/JulianCode-PC/oa-docket/constants"
)

// Task is internal work scheduled ahead of a deadline.
type Task struct {
	ID          string               `json:"task_id"`
	CaseID      string               `json:"case_id"`
	EventID     *string              `json:"event_id"`
	DeadlineID  *string              `json:"deadline_id"`
	TaskType    constants.TaskType   `json:"task_type"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Assignee    *string              `json:"assignee"`
	Priority    constants.Priority   `json:"priority"`
	CreatedAt   time.Time            `json:"created_at"`
	DueDate     *Date                `json:"due_date"`
	Status      constants.TaskStatus `json:"status"`
	Metadata    map[string]any       `json:"metadata"`
}
