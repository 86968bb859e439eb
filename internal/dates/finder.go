// Package dates finds calendar dates in free-form document text.
package dates

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JulianCode-PC/oa-docket/internal/entity"
)

// LabelWindow is how far, in characters, a labeled search looks on either side of a label.
const LabelWindow = 250

type grammar struct {
	name string
	re   *regexp.Regexp
	// group indexes into the submatch slice; mon is set for month-name grammars
	y, m, d, mon int
}

var grammars = []grammar{
	{name: "ymd", re: regexp.MustCompile(`\b((?:19|20)\d{2})[/.\-](\d{1,2})[/.\-](\d{1,2})\b`), y: 1, m: 2, d: 3},
	{name: "mdy", re: regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`), m: 1, d: 2, y: 3},
	{name: "month_name", re: regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2}),\s*(\d{4})\b`), mon: 1, d: 2, y: 3},
	{name: "iso", re: regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`), y: 1, m: 2, d: 3},
}

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Labels preceding a mailing date, tried in order.
var mailingLabels = []*regexp.Regexp{
	regexp.MustCompile(`(?i)mail(?:ing)?\s+date`),
	regexp.MustCompile(`(?i)mailed`),
	regexp.MustCompile(`(?i)notification\s+date`),
	regexp.MustCompile(`(?i)date\s+mailed`),
	regexp.MustCompile(`(?i)date:`),
}

// Match is a valid date found at a byte offset of the searched text.
type Match struct {
	Date    entity.Date
	Offset  int
	Text    string
	Grammar string
}

// FindAll returns every well-formed date in text ordered by position.
// Candidates that do not exist on the calendar are dropped.
func FindAll(text string) []Match {
	var out []Match
	for _, g := range grammars {
		for _, idx := range g.re.FindAllStringSubmatchIndex(text, -1) {
			d, ok := g.parse(text, idx)
			if !ok {
				continue
			}
			out = append(out, Match{Date: d, Offset: idx[0], Text: text[idx[0]:idx[1]], Grammar: g.name})
		}
	}
	// stable keeps grammar order for candidates starting at the same offset
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// FindFirst returns the left-most valid date in text.
func FindFirst(text string) (Match, bool) {
	all := FindAll(text)
	if len(all) == 0 {
		return Match{}, false
	}
	return all[0], true
}

// FindMailingDate prefers dates near mailing-date labels and falls back to
// the first date anywhere in the text.
func FindMailingDate(text string) (Match, bool) {
	if strings.TrimSpace(text) == "" {
		return Match{}, false
	}
	for _, label := range mailingLabels {
		for _, loc := range label.FindAllStringIndex(text, -1) {
			start, end := window(text, loc[0], loc[1], LabelWindow)
			if m, ok := FindFirst(text[start:end]); ok {
				m.Offset += start
				return m, true
			}
		}
	}
	return FindFirst(text)
}

func (g grammar) parse(text string, idx []int) (entity.Date, bool) {
	group := func(i int) string {
		if idx[2*i] < 0 {
			return ""
		}
		return text[idx[2*i]:idx[2*i+1]]
	}
	year, err := strconv.Atoi(group(g.y))
	if err != nil {
		return entity.Date{}, false
	}
	day, err := strconv.Atoi(group(g.d))
	if err != nil {
		return entity.Date{}, false
	}
	var month time.Month
	if g.mon > 0 {
		mon, ok := monthNames[strings.ToLower(group(g.mon))]
		if !ok {
			return entity.Date{}, false
		}
		month = mon
	} else {
		m, err := strconv.Atoi(group(g.m))
		if err != nil {
			return entity.Date{}, false
		}
		month = time.Month(m)
	}
	return entity.NewDate(year, month, day)
}

// window widens [start,end) by n runes on each side, clipped to text.
func window(text string, start, end, n int) (int, int) {
	for i := 0; i < n && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	for i := 0; i < n && end < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return start, end
}
