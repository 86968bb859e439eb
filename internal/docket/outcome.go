package docket

import "fmt"

// Kind tells a derived record apart from a rule that did not apply.
type Kind int

const (
	Matched Kind = iota + 1
	NoMatch
)

func (k Kind) String() string {
	switch k {
	case Matched:
		return "matched"
	case NoMatch:
		return "no_match"
	default:
		return "invalid"
	}
}

// Stage names a derivation boundary of the chain.
type Stage string

const (
	StageIntake   Stage = "intake"
	StageEvent    Stage = "document_to_event"
	StageDeadline Stage = "event_to_deadline"
	StageTask     Stage = "deadline_to_task"
)

// Outcome is the result of one stage. NoMatch is a normal terminal state,
// never an error.
type Outcome struct {
	Kind   Kind   `json:"kind"`
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason,omitempty"`
}

func matched(s Stage) Outcome { return Outcome{Kind: Matched, Stage: s} }

func noMatch(s Stage, format string, args ...any) Outcome {
	return Outcome{Kind: NoMatch, Stage: s, Reason: fmt.Sprintf(format, args...)}
}

func (o Outcome) Matched() bool { return o.Kind == Matched }

func (o Outcome) String() string {
	if o.Reason == "" {
		return fmt.Sprintf("%s: %s", o.Stage, o.Kind)
	}
	return fmt.Sprintf("%s: %s (%s)", o.Stage, o.Kind, o.Reason)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "matched":
		*k = Matched
	case "no_match":
		*k = NoMatch
	default:
		return fmt.Errorf("unknown outcome kind %q", string(b))
	}
	return nil
}
