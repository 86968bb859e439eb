package extract

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/JulianCode-PC/oa-docket/constants"
	"github.com/JulianCode-PC/oa-docket/internal/common"
)

// StaticExtractor serves text that was extracted elsewhere, keyed by path.
// Paths not in Texts fail with common.ErrExtraction unless Default is set.
type StaticExtractor struct {
	Texts   map[string]string
	Default *string
}

func (s StaticExtractor) Extract(_ context.Context, path string) (TextExtractionResult, error) {
	text, ok := s.Texts[path]
	if !ok {
		if s.Default == nil {
			return TextExtractionResult{}, common.ExtractionError(path, nil)
		}
		text = *s.Default
	}
	return TextExtractionResult{
		Text:       text,
		Pages:      1 + strings.Count(text, "\f"),
		SourceType: constants.MapExtToFormat(filepath.Ext(path)),
		Method:     "static",
	}, nil
}
