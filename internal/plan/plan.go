// Package plan suggests a coarse response strategy for an analyzed document.
package plan

import (
	"fmt"

	"github.com/JulianCode-PC/oa-docket/constants"
	"github.com/JulianCode-PC/oa-docket/internal/entity"
)

const (
	RiskNotOA          = "Document may not be an Office Action; verify classification."
	RiskFinal          = "Final OA detected; response strategy may require additional procedural choices."
	RiskNonFinal       = "Non-final/unknown OA; choose argue vs amend after reviewing grounds."
	RiskNoMailingDate  = "Mailing date not confidently extracted; deadline may be inaccurate until confirmed."
	OverrideNote       = " (Classified as OA by localized keywords; weighted confidence below threshold.)"
	actionConfirmType  = "Confirm document type manually (system confidence low)."
	actionFinalChoice  = "Decide whether to amend, appeal, request continued examination (RCE), or interview examiner."
	actionDraftOptions = "Draft amendment options (narrowing vs minimal changes) and/or argument outline."
)

var (
	baseActions = []string{
		"Confirm mailing/notification date and response deadline.",
		"Identify rejected claims and map each rejection to claim elements.",
		"Collect cited references and compare against specification/claims.",
	}
	oaInputs = []string{
		"Current claims set (latest filed claims)",
		"Specification / drawings",
		"Prior art / cited references (if not in OA PDF)",
		"Client goals (broad coverage vs quick allowance)",
	}
	notOAInputs = []string{"Original PDF", "Any cover letter / transmittal metadata"}
)

// Recommendation is a suggested path with its checklist.
type Recommendation struct {
	Path           constants.RecommendedPath
	ActionItems    []string
	RequiredInputs []string
	RiskNote       string
}

// Recommend picks a path from the OA decision, its subtype and whether a
// mailing date was found. PathArgue is never chosen automatically.
func Recommend(isOA bool, oaType constants.OAType, mailing *entity.Date) Recommendation {
	if !isOA {
		return Recommendation{
			Path:           constants.PathNeedMoreInfo,
			ActionItems:    []string{actionConfirmType},
			RequiredInputs: clone(notOAInputs),
			RiskNote:       RiskNotOA,
		}
	}

	r := Recommendation{RequiredInputs: clone(oaInputs)}
	var second string
	if oaType == constants.OATypeFinal {
		r.Path, second, r.RiskNote = constants.PathNeedMoreInfo, actionFinalChoice, RiskFinal
	} else {
		r.Path, second, r.RiskNote = constants.PathAmend, actionDraftOptions, RiskNonFinal
	}
	r.ActionItems = make([]string, 0, len(baseActions)+1)
	r.ActionItems = append(r.ActionItems, baseActions[0], second)
	r.ActionItems = append(r.ActionItems, baseActions[1:]...)

	if mailing == nil {
		r.RiskNote = RiskNoMailingDate
	}
	return r
}

// AnnotateBasis appends a fallback note to the risk note of an OA whose due
// date was not computed from the mailing date.
func (r *Recommendation) AnnotateBasis(isOA bool, basis constants.Basis) {
	if !isOA || basis == constants.BasisMailingDate {
		return
	}
	r.RiskNote = fmt.Sprintf("%s (Due date computed using %s as fallback.)", r.RiskNote, basis)
}

// AnnotateOverride marks a risk note whose OA decision came from the
// localized keywords rather than the weighted vote.
func (r *Recommendation) AnnotateOverride(overridden bool) {
	if overridden {
		r.RiskNote += OverrideNote
	}
}

func clone(s []string) []string { return append([]string(nil), s...) }
