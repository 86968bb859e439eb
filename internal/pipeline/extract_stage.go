package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/JulianCode-PC/oa-docket/constants"
	"github.com/JulianCode-PC/oa-docket/internal/common"
	"github.com/JulianCode-PC/oa-docket/internal/extract"
	"github.com/JulianCode-PC/oa-docket/internal/ocr"
)

// ExtractStage turns a file into text and flags results a human should look at.
type ExtractStage struct {
	TextExtractor extract.TextExtractor
	Logger        *slog.Logger
}

func NewExtractStage(tx extract.TextExtractor, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{TextExtractor: tx, Logger: logger}
}

// Run extracts text from path. needsReview is set for empty text and for
// low-confidence image OCR.
func (s *ExtractStage) Run(ctx context.Context, path string) (res extract.TextExtractionResult, needsReview bool, err error) {
	logger := common.LoggerFromContext(ctx, s.Logger)

	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return res, false, common.NewAppError(common.CodeUnsupportedFile,
			fmt.Sprintf("unsupported format: %s", filepath.Ext(path)), common.ErrUnsupported)
	}

	res, err = s.TextExtractor.Extract(ctx, path)
	if err != nil {
		logger.Error("extract failed", "path", path, "err", err)
		return res, false, err
	}

	switch {
	case res.Text == "":
		logger.Warn("no text extracted; scanned document without ocr?", "path", path, "method", res.Method)
		needsReview = true
	case format == constants.IMAGE && res.Confidence > 0 && res.Confidence < ocr.ImageConfidenceThreshold:
		logger.Warn("image ocr confidence low; needs review", "path", path, "conf", res.Confidence)
		needsReview = true
	}
	return res, needsReview, nil
}
