// Package issues turns office action text into short reviewer bullets.
package issues

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultMaxItems caps the number of bullets returned.
	DefaultMaxItems = 5
	// MaxBulletLen is the longest bullet, in characters, including the ellipsis.
	MaxBulletLen = 180

	truncateAt    = 177
	maxClaimLines = 2
	maxRefs       = 3
	ellipsis      = "…"

	NoTextBullet   = "No text extracted (scanned PDF or OCR missing)."
	NeedsReview    = "OA detected but no clear rejection lines found; needs human review."
	groundsPrefix  = "Possible statutory grounds mentioned: "
	citationPrefix = "Cited references detected (partial): "
)

var (
	claimRejectedRe = regexp.MustCompile(`(?i)(claims?\s+[\d,\-\s]+?\s+(?:is|are)\s+rejected[^.\n]*)`)
	uscRe           = regexp.MustCompile(`(?i)(35\s+u\.?s\.?c\.?\s*§?\s*\d+[^.\n]*)`)
	referenceRe     = regexp.MustCompile(`\bUS\s*\d{1,2}[, ]?\d{3}[, ]?\d{3}\b|\b\d{1,2},\d{3},\d{3}\b`)
	whitespaceRe    = regexp.MustCompile(`\s+`)

	grounds = []struct {
		name string
		re   *regexp.Regexp
	}{
		{"102", regexp.MustCompile(`\b102\b`)},
		{"103", regexp.MustCompile(`\b103\b`)},
		{"112", regexp.MustCompile(`\b112\b`)},
	}
)

// Summarize returns at most maxItems bullets in rule order: rejected-claim
// fragments, statutory grounds, the first 35 U.S.C. citation, then cited
// references. maxItems <= 0 means DefaultMaxItems.
func Summarize(text string, maxItems int) []string {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if strings.TrimSpace(text) == "" {
		return []string{NoTextBullet}
	}

	var bullets []string
	for _, line := range claimRejectedRe.FindAllString(text, maxClaimLines) {
		bullets = append(bullets, Clean(line))
	}

	var found []string
	for _, g := range grounds {
		if g.re.MatchString(text) {
			found = append(found, g.name)
		}
	}
	if len(found) > 0 {
		bullets = append(bullets, groundsPrefix+strings.Join(found, ", ")+".")
	}

	if usc := uscRe.FindString(text); usc != "" {
		bullets = append(bullets, Clean(usc))
	}

	if refs := uniqueRefs(referenceRe.FindAllString(text, -1)); len(refs) > 0 {
		more := ""
		if len(refs) > maxRefs {
			refs, more = refs[:maxRefs], ellipsis
		}
		bullets = append(bullets, fmt.Sprintf("%s%s%s", citationPrefix, strings.Join(refs, ", "), more))
	}

	if len(bullets) == 0 {
		return []string{NeedsReview}
	}
	if len(bullets) > maxItems {
		bullets = bullets[:maxItems]
	}
	return bullets
}

// Clean collapses whitespace and caps s at MaxBulletLen characters.
func Clean(s string) string {
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	r := []rune(s)
	if len(r) <= MaxBulletLen {
		return s
	}
	return strings.TrimRight(string(r[:truncateAt]), " ") + ellipsis
}

func uniqueRefs(matches []string) []string {
	var out []string
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(whitespaceRe.ReplaceAllString(m, " "))
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
