// Package record defines the analysis output read by downstream consumers.
package record

import (
	"regexp"
	"strings"
	"time"

	"github.com/JulianCode-PC/oa-docket/constants"
	"github.com/JulianCode-PC/oa-docket/internal/docket"
	"github.com/JulianCode-PC/oa-docket/internal/entity"
)

// StatusAnalyzed marks an input document that went through the pipeline.
const StatusAnalyzed = "analyzed"

// TimestampLayout renders local wall time with its UTC offset, to the second.
const TimestampLayout = time.RFC3339

type InputDocument struct {
	DocID            string   `json:"doc_id" yaml:"doc_id"`
	FileName         string   `json:"file_name" yaml:"file_name"`
	FilePath         string   `json:"file_path" yaml:"file_path"`
	FileURI          string   `json:"file_uri" yaml:"file_uri"`
	ReceivedAt       string   `json:"received_at" yaml:"received_at"`
	OCRText          string   `json:"ocr_text" yaml:"ocr_text"`
	OCRConfidence    *float64 `json:"ocr_confidence" yaml:"ocr_confidence"`
	ExtractionMethod string   `json:"extraction_method" yaml:"extraction_method"`
	Pages            int      `json:"pages" yaml:"pages"`
	Status           string   `json:"status" yaml:"status"`
}

type OARecord struct {
	OAID          string                 `json:"oa_id" yaml:"oa_id"`
	DocID         string                 `json:"doc_id" yaml:"doc_id"`
	DocumentType  constants.DocumentType `json:"document_type" yaml:"document_type"`
	IsOA          bool                   `json:"is_oa" yaml:"is_oa"`
	OAType        constants.OAType       `json:"oa_type" yaml:"oa_type"`
	MailingDate   *entity.Date           `json:"mailing_date" yaml:"mailing_date"`
	DueDate       *entity.Date           `json:"due_date" yaml:"due_date"`
	DueBasis      *constants.Basis       `json:"due_basis" yaml:"due_basis"`
	IssuesSummary []string               `json:"issues_summary" yaml:"issues_summary"`
	Confidence    *float64               `json:"confidence" yaml:"confidence"`
	CaseRef       *string                `json:"case_ref" yaml:"case_ref"`
}

type NextStepPlan struct {
	PlanID          string                    `json:"plan_id" yaml:"plan_id"`
	OAID            string                    `json:"oa_id" yaml:"oa_id"`
	RecommendedPath constants.RecommendedPath `json:"recommended_path" yaml:"recommended_path"`
	ActionItems     []string                  `json:"action_items" yaml:"action_items"`
	RequiredInputs  []string                  `json:"required_inputs" yaml:"required_inputs"`
	RiskNote        string                    `json:"risk_note" yaml:"risk_note"`
	CreatedAt       string                    `json:"created_at" yaml:"created_at"`
}

// DocketSummary condenses the records a docket run derived for one document.
type DocketSummary struct {
	CaseID            string                   `json:"case_id" yaml:"case_id"`
	Jurisdiction      string                   `json:"jurisdiction" yaml:"jurisdiction"`
	ApplicationNumber *string                  `json:"application_number" yaml:"application_number"`
	DocumentID        string                   `json:"document_id" yaml:"document_id"`
	DocumentStatus    constants.DocumentStatus `json:"document_status" yaml:"document_status"`
	EventID           *string                  `json:"event_id" yaml:"event_id"`
	EventDate         *entity.Date             `json:"event_date" yaml:"event_date"`
	DeadlineID        *string                  `json:"deadline_id" yaml:"deadline_id"`
	DeadlineDue       *entity.Date             `json:"deadline_due" yaml:"deadline_due"`
	RuleBasis         *string                  `json:"rule_basis" yaml:"rule_basis"`
	TaskID            *string                  `json:"task_id" yaml:"task_id"`
	TaskDue           *entity.Date             `json:"task_due" yaml:"task_due"`
	Outcomes          []docket.Outcome         `json:"outcomes" yaml:"outcomes"`
}

// Result is the full analysis of one input file.
type Result struct {
	InputDocument InputDocument  `json:"input_document" yaml:"input_document"`
	OARecord      OARecord       `json:"oa_record" yaml:"oa_record"`
	NextStepPlan  NextStepPlan   `json:"next_step_plan" yaml:"next_step_plan"`
	Docket        *DocketSummary `json:"docket,omitempty" yaml:"docket,omitempty"`
}

// Summarize flattens a docket trace of case c.
func Summarize(c *entity.Case, tr docket.Trace) *DocketSummary {
	s := &DocketSummary{
		CaseID:            c.ID,
		Jurisdiction:      c.Jurisdiction,
		ApplicationNumber: c.ApplicationNumber,
		Outcomes:          tr.Outcomes,
	}
	if tr.Document != nil {
		s.DocumentID = tr.Document.ID
		s.DocumentStatus = tr.Document.Status
	}
	if tr.Event != nil {
		s.EventID = &tr.Event.ID
		s.EventDate = tr.Event.EventDate.Ptr()
	}
	if tr.Deadline != nil {
		s.DeadlineID = &tr.Deadline.ID
		s.DeadlineDue = tr.Deadline.DueDate
		s.RuleBasis = &tr.Deadline.RuleBasis
	}
	if tr.Task != nil {
		s.TaskID = &tr.Task.ID
		s.TaskDue = tr.Task.DueDate
	}
	return s
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

const maxSlugLen = 40

// SimpleID derives a readable deterministic id such as "doc_oa-2024-pdf"
// from a file name.
func SimpleID(prefix, base string) string {
	slug := strings.ToLower(strings.Trim(nonAlnum.ReplaceAllString(base, "-"), "-"))
	if slug == "" {
		slug = "x"
	}
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return prefix + "_" + slug
}

// Timestamp formats t for record fields.
func Timestamp(t time.Time) string { return t.Format(TimestampLayout) }
