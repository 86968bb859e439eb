package entity

import (
	"time"

	"github.com/JulianCode-PC/oa-docket/constants"
)

// Event is something that happened on a case, usually triggered by a document.
// DocumentID is nil for manually created events.
type Event struct {
	ID          string                `json:"event_id"`
	CaseID      string                `json:"case_id"`
	DocumentID  *string               `json:"document_id"`
	EventType   constants.EventType   `json:"event_type"`
	EventDate   Date                  `json:"event_date"`
	CreatedAt   time.Time             `json:"created_at"`
	Description string                `json:"description"`
	Status      constants.EventStatus `json:"status"`
	Metadata    map[string]any        `json:"metadata"`
}
