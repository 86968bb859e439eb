package constants

import "strings"

// DocumentType is derived from extracted text only.
type DocumentType string

const (
	DocumentTypeOA      DocumentType = "OA"
	DocumentTypeGazette DocumentType = "GAZETTE"
	DocumentTypeReceipt DocumentType = "RECEIPT"
	DocumentTypeUnknown DocumentType = "UNKNOWN"
)

var allDocumentTypes = []DocumentType{
	DocumentTypeOA,
	DocumentTypeGazette,
	DocumentTypeReceipt,
	DocumentTypeUnknown,
}

// ParseDocumentType maps a free-form label onto a known document type.
func ParseDocumentType(input string) (DocumentType, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	if normalized == "" {
		return DocumentTypeUnknown, false
	}

	synonyms := map[string]DocumentType{
		"OFFICE ACTION":  DocumentTypeOA,
		"OFFICE_ACTION":  DocumentTypeOA,
		"PUBLICATION":    DocumentTypeGazette,
		"FILING RECEIPT": DocumentTypeReceipt,
		"FILING_RECEIPT": DocumentTypeReceipt,
	}
	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}
	for _, dt := range allDocumentTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}
	return DocumentTypeUnknown, false
}

// Source identifies who sent a document.
type Source string

const (
	SourceOffice   Source = "OFFICE"
	SourceAgent    Source = "AGENT"
	SourceClient   Source = "CLIENT"
	SourceInternal Source = "INTERNAL"
)

// EventType, DeadlineType and TaskType name the docketing rule chain.
type (
	EventType    string
	DeadlineType string
	TaskType     string
)

const (
	EventTypeOAReceived       EventType    = "OA_RECEIVED"
	DeadlineTypeOAResponseDue DeadlineType = "OA_RESPONSE_DUE"
	TaskTypeDraftOAResponse   TaskType     = "DRAFT_OA_RESPONSE"
)

// OAType is the final / non-final sub-classification of an office action.
type OAType string

const (
	OATypeNonFinal OAType = "non_final"
	OATypeFinal    OAType = "final"
	OATypeUnknown  OAType = "unknown"
)

// Basis records which date a due date was computed from.
type Basis string

const (
	BasisMailingDate Basis = "mailing_date"
	BasisReceivedAt  Basis = "received_at"
	BasisUnknown     Basis = "unknown"
)

// RecommendedPath is the coarse response strategy of a next-step plan.
type RecommendedPath string

const (
	PathArgue        RecommendedPath = "argue"
	PathAmend        RecommendedPath = "amend"
	PathNeedMoreInfo RecommendedPath = "need_more_info"
)
