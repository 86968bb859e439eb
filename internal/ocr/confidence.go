package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate    = regexp.MustCompile(`\b(19|20)\d{2}[/.\-]\d{1,2}[/.\-]\d{1,2}\b|\b[a-z]{3,9}\.? \d{1,2}, \d{4}\b`)
	reLegal   = regexp.MustCompile(`office action|claims?\b|u\.s\.c\.|rejection|審查|申請|核駁`)
	reAppNo   = regexp.MustCompile(`application\s*no|申請號|\b\d{2}/\d{3},?\d{3}\b`)
	reGarbage = regexp.MustCompile(`[^\p{L}\p{N}\s.,:;/()\-§'"]`)
)

// heuristicConfidence scores how much the decoded text looks like readable
// patent correspondence, in 0..1.
func heuristicConfidence(txt string) float32 {
	if strings.TrimSpace(txt) == "" {
		return 0
	}
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reLegal.MatchString(txtL) {
		score += 0.2
	}
	if reAppNo.MatchString(txtL) {
		score += 0.15
	}
	if len([]rune(txt)) > 120 {
		score += 0.1
	} // enough content
	// OCR noise: penalize a high share of symbols that are neither letters nor digits
	if noise := float32(len(reGarbage.FindAllStringIndex(txt, -1))) / float32(len([]rune(txt))); noise > 0.2 {
		score -= 0.2
	}
	return max(0, min(score, 1.0))
}
