// Package classify decides what kind of correspondence a document is.
//
// Two independent strategies exist: a weighted English signal vote that
// yields a confidence score, and a keyword-presence classifier for localized
// (Traditional Chinese) office documents that yields only a category.
// Either can be used on its own or combined by Combined.
package classify

import (
	"strings"

	"github.com/JulianCode-PC/oa-docket/constants"
)

// Strategy names accepted by New.
const (
	StrategyWeighted  = "weighted"
	StrategyLocalized = "localized"
	StrategyEither    = "either"
)

// Classification is the outcome of one classifier run.
// Confidence is nil when the strategy does not score.
// LocalizedOverride is set when Combined accepted an OA on localized keywords
// after the weighted vote scored it below its threshold.
type Classification struct {
	DocumentType      constants.DocumentType
	IsOA              bool
	Confidence        *float64
	Subtype           constants.OAType
	Signals           []string
	Strategy          string
	LocalizedOverride bool
}

// Strategy classifies normalized document text.
type Strategy interface {
	Name() string
	Classify(text string) Classification
}

// New returns the strategy registered under name, or false.
func New(name string, threshold float64) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyWeighted:
		return NewWeighted(threshold), true
	case StrategyLocalized:
		return Localized{}, true
	case StrategyEither, "":
		return Combined{Weighted: NewWeighted(threshold), Localized: Localized{}}, true
	default:
		return nil, false
	}
}

// Subtype separates final from non-final office actions.
// It is computed independently of the OA decision and may be unknown.
func Subtype(text string) constants.OAType {
	t := strings.ToLower(text)
	nonFinal := strings.Contains(t, "non-final") || strings.Contains(t, "nonfinal")
	switch {
	case nonFinal:
		return constants.OATypeNonFinal
	case strings.Contains(t, "final"):
		return constants.OATypeFinal
	default:
		return constants.OATypeUnknown
	}
}

// subtypeFor never reports a subtype for a document that is not an OA.
func subtypeFor(isOA bool, text string) constants.OAType {
	if !isOA {
		return constants.OATypeUnknown
	}
	return Subtype(text)
}

// Combined asks the weighted vote first and consults the localized keyword
// sets only when the vote is negative.
type Combined struct {
	Weighted  *Weighted
	Localized Localized
}

func (Combined) Name() string { return StrategyEither }

func (c Combined) Classify(text string) Classification {
	w := c.Weighted.Classify(text)
	if w.IsOA {
		w.Strategy = c.Name()
		return w
	}
	l := c.Localized.Classify(text)
	if l.DocumentType == constants.DocumentTypeUnknown {
		w.Strategy = c.Name()
		return w
	}
	l.Confidence = w.Confidence
	l.Signals = append(w.Signals, l.Signals...)
	l.Strategy = c.Name()
	l.LocalizedOverride = l.IsOA
	return l
}
