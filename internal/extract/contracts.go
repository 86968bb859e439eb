package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: file -> text.
// Empty text is a valid result; an error means no text could be obtained at all.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // "PDF" | "IMAGE" | "TXT"
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "text-file" | "static"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}
