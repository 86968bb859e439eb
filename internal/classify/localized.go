package classify

import (
	"strings"

	"github.com/JulianCode-PC/oa-docket/constants"
)

var (
	englishOAPhrases = []string{"office action", "non-final", "final office action"}
	// 審查意見 (examination opinion) alone marks an OA; 通知書 (notice) needs an examination verb.
	localOAPhrase       = "審查意見"
	localNoticePhrase   = "通知書"
	localNoticeVerbs    = []string{"審查", "核駁", "補正"}
	localGazettePhrases = []string{"公報", "公告", "證書號"}
)

// Localized decides by phrase presence only and never scores.
type Localized struct{}

func (Localized) Name() string { return StrategyLocalized }

func (l Localized) Classify(text string) Classification {
	dt, fired := l.documentType(text)
	isOA := dt == constants.DocumentTypeOA
	return Classification{
		DocumentType: dt,
		IsOA:         isOA,
		Subtype:      subtypeFor(isOA, text),
		Signals:      fired,
		Strategy:     l.Name(),
	}
}

func (Localized) documentType(text string) (constants.DocumentType, []string) {
	lower := strings.ToLower(text)
	for _, p := range englishOAPhrases {
		if strings.Contains(lower, p) {
			return constants.DocumentTypeOA, []string{p}
		}
	}
	if strings.Contains(text, localOAPhrase) {
		return constants.DocumentTypeOA, []string{localOAPhrase}
	}
	if strings.Contains(text, localNoticePhrase) {
		for _, v := range localNoticeVerbs {
			if strings.Contains(text, v) {
				return constants.DocumentTypeOA, []string{localNoticePhrase, v}
			}
		}
	}
	for _, p := range localGazettePhrases {
		if strings.Contains(text, p) {
			return constants.DocumentTypeGazette, []string{p}
		}
	}
	return constants.DocumentTypeUnknown, nil
}
