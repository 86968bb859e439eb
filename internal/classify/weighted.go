package classify

import (
	"math"
	"strings"

	"github.com/JulianCode-PC/oa-docket/constants"
)

const (
	// DefaultThreshold is the confidence at which text counts as an office action.
	DefaultThreshold = 0.35
	// EmptyTextConfidence is reported for empty or whitespace-only text.
	EmptyTextConfidence = 0.2

	scoreDivisor = 6.0
)

// Signal is a phrase that votes for an office action with a weight.
type Signal struct {
	Phrase string
	Weight float64
}

// DefaultSignals are matched against lower-cased text.
var DefaultSignals = []Signal{
	{"office action", 2.0},
	{"non-final", 1.0},
	{"final", 0.8},
	{"rejection", 0.8},
	{"claims", 0.5},
	{"35 u.s.c.", 1.2},
	{"102", 0.6},
	{"103", 0.6},
	{"112", 0.6},
	{"time period for reply", 1.5},
	{"reply is required", 1.0},
}

// Weighted sums the weights of present signals, normalizes and thresholds.
type Weighted struct {
	Signals   []Signal
	Threshold float64
}

func NewWeighted(threshold float64) *Weighted {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Weighted{Signals: DefaultSignals, Threshold: threshold}
}

func (*Weighted) Name() string { return StrategyWeighted }

func (w *Weighted) Classify(text string) Classification {
	if strings.TrimSpace(text) == "" {
		conf := EmptyTextConfidence
		return Classification{
			DocumentType: constants.DocumentTypeUnknown,
			Confidence:   &conf,
			Subtype:      constants.OATypeUnknown,
			Strategy:     w.Name(),
		}
	}

	t := strings.ToLower(text)
	var score float64
	var fired []string
	for _, s := range w.Signals {
		if strings.Contains(t, s.Phrase) {
			score += s.Weight
			fired = append(fired, s.Phrase)
		}
	}
	conf := math.Max(0, math.Min(1, score/scoreDivisor))
	isOA := conf >= w.Threshold

	dt := constants.DocumentTypeUnknown
	if isOA {
		dt = constants.DocumentTypeOA
	}
	return Classification{
		DocumentType: dt,
		IsOA:         isOA,
		Confidence:   &conf,
		Subtype:      subtypeFor(isOA, text),
		Signals:      fired,
		Strategy:     w.Name(),
	}
}
