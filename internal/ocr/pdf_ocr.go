package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JulianCode-PC/oa-docket/constants"
)

// extractPDF reads the embedded text layer and, when it is blank and the
// fallback is enabled, OCRs rasterized pages instead.
func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	res := Result{SourceType: constants.PDF, Method: MethodPDFText}

	text, pages, warns, textErr := e.pdfToText(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if textErr == nil {
		res.Text, res.Pages = Normalize(text), pages
		if !res.Empty() || !e.cfg.EnableFallback {
			res.Confidence = heuristicConfidence(res.Text)
			return res, nil
		}
		e.logger.Info("pdf has no text layer; trying ocr", "path", path, "pages", pages)
	} else if !e.cfg.EnableFallback {
		return res, fmt.Errorf("pdftotext: %w", textErr)
	}

	ocrText, ocrPages, warns, ocrErr := e.pdfToOCR(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if ocrErr != nil {
		if textErr == nil {
			// The text layer was read, it is just empty.
			res.Warnings = append(res.Warnings, "ocr fallback failed: "+ocrErr.Error())
			res.Confidence = heuristicConfidence(res.Text)
			return res, nil
		}
		return res, errors.Join(fmt.Errorf("pdftotext: %w", textErr), fmt.Errorf("ocr: %w", ocrErr))
	}
	res.Text, res.Pages = Normalize(ocrText), ocrPages
	res.Method, res.Language = MethodPDFOCR, e.cfg.TesseractLang
	res.Confidence = heuristicConfidence(res.Text)
	return res, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, nonEmpty(string(errb)), err
	}
	text = strings.TrimSuffix(string(out), "\f")
	// A form-feed \f is used as page separator by default
	pages = 1 + strings.Count(text, "\f")
	return text, pages, nil, nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "oadocket-pp-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	args := []string{"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...); err != nil {
		return "", 0, nonEmpty(string(errb)), fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (page-1.png, page-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	ok := 0
	for _, img := range matches {
		if err := ctx.Err(); err != nil {
			return "", 0, warns, err
		}
		txt, w, err := e.tesseractOCR(ctx, img)
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		ok++
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(txt)
	}
	if ok == 0 {
		return "", len(matches), warns, fmt.Errorf("tesseract failed on all %d pages", len(matches))
	}
	return b.String(), len(matches), warns, nil
}

func nonEmpty(s string) []string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return []string{s}
}
