package docket

import (
	"regexp"
	"strings"
)

var (
	localAppNoRe   = regexp.MustCompile(`申請號\s*[:：]?\s*([0-9A-Za-z ]{6,})`)
	englishAppNoRe = regexp.MustCompile(`(?i)Application\s*No\.?\s*[:：]?\s*([0-9A-Za-z\-/ ]{6,})`)
)

// GuessApplicationNumber looks for a labeled application number, e.g.
// "申請號 114139326 E" or "Application No.: 17/123456".
func GuessApplicationNumber(text string) (string, bool) {
	for _, re := range []*regexp.Regexp{localAppNoRe, englishAppNoRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v, true
			}
		}
	}
	return "", false
}
