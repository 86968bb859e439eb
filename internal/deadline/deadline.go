// Package deadline computes response due dates from a base date.
//
// Two rules exist and are selected by configuration: MonthRule advances by
// calendar months with month-end clamping, FixedDaysRule adds a flat number
// of days. Neither rule ever returns an error; an unusable base yields a nil
// due date with BasisUnknown.
package deadline

import (
	"fmt"
	"strings"
	"time"

	"github.com/JulianCode-PC/oa-docket/constants"
	"github.com/JulianCode-PC/oa-docket/internal/entity"
)

const (
	RuleMonths    = "months"
	RuleFixedDays = "fixed_days"

	DefaultMonths    = 3
	DefaultFixedDays = 90
)

// fallbackLayouts are tried in order when parsing Input.Fallback.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Input is the base for a computation. Authoritative wins when set.
type Input struct {
	Authoritative *entity.Date
	Fallback      string
}

// Result is a computed due date and how it was obtained.
type Result struct {
	Due         *entity.Date
	Basis       constants.Basis
	Base        *entity.Date
	Description string
}

// Rule turns a base into a due date.
type Rule interface {
	Name() string
	Compute(in Input) Result
}

// New returns the rule registered under name. A non-positive months or days
// selects DefaultMonths or DefaultFixedDays.
func New(name string, months, days int) (Rule, error) {
	if months <= 0 {
		months = DefaultMonths
	}
	if days <= 0 {
		days = DefaultFixedDays
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case RuleMonths, "":
		return MonthRule{Months: months}, nil
	case RuleFixedDays:
		return FixedDaysRule{Days: days}, nil
	default:
		return nil, fmt.Errorf("unknown deadline rule %q", name)
	}
}

// AddMonths advances d by n calendar months, clamping the day to the last
// day of the target month. n may be zero or negative.
func AddMonths(d entity.Date, n int) entity.Date {
	total := int(d.Month) - 1 + n
	year := d.Year + floorDiv(total, 12)
	month := time.Month(floorMod(total, 12) + 1)
	day := min(d.Day, entity.DaysIn(year, month))
	return entity.Date{Year: year, Month: month, Day: day}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int { return a - floorDiv(a, b)*b }

// ParseFallback reads the date part of a timestamp in one of the supported layouts.
func ParseFallback(s string) (entity.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return entity.Date{}, false
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return entity.DateOf(t), true
		}
	}
	return entity.Date{}, false
}

// resolveBase picks the authoritative date or the parsed fallback.
func resolveBase(in Input) (entity.Date, constants.Basis) {
	if in.Authoritative != nil && !in.Authoritative.IsZero() {
		return *in.Authoritative, constants.BasisMailingDate
	}
	if d, ok := ParseFallback(in.Fallback); ok {
		return d, constants.BasisReceivedAt
	}
	return entity.Date{}, constants.BasisUnknown
}

// MonthRule adds Months calendar months to the base. The value is used as
// given, so the zero MonthRule returns the base date itself.
type MonthRule struct {
	Months int
}

func (MonthRule) Name() string { return RuleMonths }

func (r MonthRule) Compute(in Input) Result {
	base, basis := resolveBase(in)
	if basis == constants.BasisUnknown {
		return Result{Basis: basis, Description: "no usable base date"}
	}
	return Result{
		Due:         AddMonths(base, r.Months).Ptr(),
		Basis:       basis,
		Base:        base.Ptr(),
		Description: fmt.Sprintf("%s + %d months", basis, r.Months),
	}
}

// FixedDaysRule adds Days calendar days to the base without month rounding.
// Like MonthRule it applies no default.
type FixedDaysRule struct {
	Days int
}

func (FixedDaysRule) Name() string { return RuleFixedDays }

func (r FixedDaysRule) Compute(in Input) Result {
	base, basis := resolveBase(in)
	if basis == constants.BasisUnknown {
		return Result{Basis: basis, Description: "no usable base date"}
	}
	return Result{
		Due:         base.AddDays(r.Days).Ptr(),
		Basis:       basis,
		Base:        base.Ptr(),
		Description: fmt.Sprintf("%s + %d days", basis, r.Days),
	}
}
