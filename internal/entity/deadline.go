package entity

import (
	"time"

	"github.com/JulianCode-PC/oa-docket/constants"
)

// Deadline is a legal due date derived from an event.
// DueDate is nil only when no base date could be established.
type Deadline struct {
	ID           string                   `json:"deadline_id"`
	CaseID       string                   `json:"case_id"`
	EventID      string                   `json:"event_id"`
	DeadlineType constants.DeadlineType   `json:"deadline_type"`
	DueDate      *Date                    `json:"due_date"`
	GraceDueDate *Date                    `json:"grace_due_date"`
	CreatedAt    time.Time                `json:"created_at"`
	Status       constants.DeadlineStatus `json:"status"`
	RuleBasis    string                   `json:"rule_basis"`
	Metadata     map[string]any           `json:"metadata"`
}
