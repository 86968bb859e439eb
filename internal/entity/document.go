package entity

import (
	"time"

	"github.com/JulianCode-PC/oa-docket/constants"
)

// Document is a single piece of correspondence taken into a case.
type Document struct {
	ID                string                   `json:"document_id"`
	CaseID            string                   `json:"case_id"`
	Source            constants.Source         `json:"source"`
	DocumentType      constants.DocumentType   `json:"document_type"`
	ReceivedDate      Date                     `json:"received_date"`
	ReceivedAt        time.Time                `json:"received_at"`
	ExternalReference *string                  `json:"external_reference"`
	Title             string                   `json:"title"`
	FilePath          string                   `json:"file_path"`
	RawText           string                   `json:"raw_text"`
	Status            constants.DocumentStatus `json:"status"`
}
