package ocr

import (
	"fmt"
	"os"
	"strings"

	"github.com/JulianCode-PC/oa-docket/constants"
)

// extractText reads a pre-extracted plain text file as is.
func (e *Extractor) extractText(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{SourceType: constants.TXT, Method: MethodTextFile}, fmt.Errorf("read text file: %w", err)
	}
	raw := strings.TrimSuffix(string(b), "\f")
	txt := Normalize(raw)
	return Result{
		Text:       txt,
		Pages:      1 + strings.Count(raw, "\f"),
		SourceType: constants.TXT,
		Method:     MethodTextFile,
		Confidence: heuristicConfidence(txt),
	}, nil
}
