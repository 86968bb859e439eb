package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/JulianCode-PC/oa-docket/constants"
	"github.com/JulianCode-PC/oa-docket/internal/common"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng+chi_tra"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir string
	PSM         int // e.g., 6 is good for uniform block of text

	// EnableFallback rasterizes and OCRs PDFs whose text layer is empty.
	EnableFallback bool
	// EnableTSVConfidence blends tesseract's mean word confidence into image results.
	EnableTSVConfidence bool
}

// Extraction methods reported in Result.Method.
const (
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodImageOCR = "image-ocr"
	MethodTextFile = "text-file"
)

type Result struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE | constants.TXT
	Method     string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Empty reports whether no usable text was obtained.
func (r Result) Empty() bool { return strings.TrimSpace(r.Text) == "" }

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng+chi_tra"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner, e.g. for a stub in tests.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract picks a strategy based on file extension. Empty text is a
// successful result; an error means no strategy produced anything.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)

	var (
		res Result
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	case constants.TXT:
		res, err = e.extractText(path)
	default:
		e.logger.Error("unsupported extension", "path", path, "extension", ext)
		return Result{}, common.NewAppError(common.CodeUnsupportedFile,
			fmt.Sprintf("unsupported extension %q", ext), common.ErrUnsupported)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, common.ExtractionError(path, err)
	}
	if res.Empty() {
		e.logger.Warn("extraction produced no text", "path", path, "method", res.Method, "pages", res.Pages)
	} else {
		e.logger.Info("extraction ok", "path", path, "method", res.Method,
			"pages", res.Pages, "chars", len(res.Text), "conf", res.Confidence, "duration_ms", res.Duration.Milliseconds())
	}
	return res, nil
}
