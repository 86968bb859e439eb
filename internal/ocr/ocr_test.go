package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianCode-PC/oa-docket/constants"
	"github.com/JulianCode-PC/oa-docket/internal/common"
)

type call struct {
	name string
	args []string
}

// fakeRunner answers per binary name; pdftoppm writes `pages` empty PNGs.
type fakeRunner struct {
	out   map[string]string
	fail  map[string]error
	pages int
	calls []call
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name, args})
	if err := f.fail[name]; err != nil {
		return nil, []byte(name + " exploded"), err
	}
	if name == "pdftoppm" {
		prefix := args[len(args)-1]
		for i := 1; i <= f.pages; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), nil, 0o600); err != nil {
				return nil, nil, err
			}
		}
	}
	return []byte(f.out[name]), nil, nil
}

func (f *fakeRunner) called(name string) int {
	n := 0
	for _, c := range f.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

func newTestExtractor(cfg Config, r Runner) *Extractor {
	return NewExtractor(cfg, slog.New(slog.DiscardHandler)).WithRunner(r)
}

func TestExtract_PDFTextLayer(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		"pdftotext": "Office Action\r\n\tmail date:   2024/01/15\f\n\n\n\nClaims 1-3 are rejected.\f",
	}}
	res, err := newTestExtractor(Config{EnableFallback: true}, r).Extract(context.Background(), "/in/oa.PDF")

	require.NoError(t, err)
	assert.Equal(t, "Office Action\n mail date: 2024/01/15\n\nClaims 1-3 are rejected.", res.Text)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, MethodPDFText, res.Method)
	assert.Equal(t, constants.PDF, res.SourceType)
	assert.Greater(t, res.Confidence, float32(0.5))
	assert.Zero(t, r.called("tesseract"))
}

func TestExtract_ScannedPDFFallsBackToOCR(t *testing.T) {
	r := &fakeRunner{
		out:   map[string]string{"pdftotext": " \f \f", "tesseract": "審查意見通知函\n-----\n申請號 114139326"},
		pages: 2,
	}
	res, err := newTestExtractor(Config{EnableFallback: true, MaxPages: 5}, r).Extract(context.Background(), "/in/scan.pdf")

	require.NoError(t, err)
	assert.Equal(t, MethodPDFOCR, res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 2, r.called("tesseract"))
	assert.Equal(t, "審查意見通知函\n\n申請號 114139326\n\n審查意見通知函\n\n申請號 114139326", res.Text)
	assert.Equal(t, "tesseract", r.calls[2].name)
	assert.Contains(t, r.calls[2].args, "eng+chi_tra")
}

func TestExtract_ScannedPDFWithoutFallbackIsEmptySuccess(t *testing.T) {
	r := &fakeRunner{out: map[string]string{"pdftotext": "\f\f"}}
	res, err := newTestExtractor(Config{}, r).Extract(context.Background(), "/in/scan.pdf")

	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Zero(t, res.Confidence)
	assert.Zero(t, r.called("pdftoppm"))
}

func TestExtract_OCRFailureAfterEmptyTextLayerDegrades(t *testing.T) {
	r := &fakeRunner{
		out:  map[string]string{"pdftotext": ""},
		fail: map[string]error{"pdftoppm": errors.New("not installed")},
	}
	res, err := newTestExtractor(Config{EnableFallback: true}, r).Extract(context.Background(), "/in/scan.pdf")

	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, MethodPDFText, res.Method)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[len(res.Warnings)-1], "ocr fallback failed")
}

func TestExtract_AllStrategiesFail(t *testing.T) {
	r := &fakeRunner{fail: map[string]error{
		"pdftotext": errors.New("exit status 1"),
		"pdftoppm":  errors.New("exit status 1"),
	}}
	_, err := newTestExtractor(Config{EnableFallback: true}, r).Extract(context.Background(), "/in/broken.pdf")

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)
	assert.True(t, common.IsCode(err, common.CodeExtractionFailed))
	assert.Contains(t, err.Error(), "pdftotext")
}

func TestExtract_PDFTextFailureWithoutFallback(t *testing.T) {
	r := &fakeRunner{fail: map[string]error{"pdftotext": errors.New("exit status 1")}}
	_, err := newTestExtractor(Config{}, r).Extract(context.Background(), "/in/broken.pdf")
	assert.ErrorIs(t, err, common.ErrExtraction)
	assert.Zero(t, r.called("pdftoppm"))
}

func TestExtract_Image(t *testing.T) {
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t90\tOffice\n" +
		"5\t1\t1\t1\t1\t2\t0\t0\t10\t10\t70\tAction\n" +
		"4\t1\t1\t1\t1\t0\t0\t0\t10\t10\t-1\t\n"
	r := &fakeRunner{out: map[string]string{"tesseract": "Office Action"}}
	// both tesseract invocations share the stub output; TSV confidence parses as zero rows
	res, err := newTestExtractor(Config{EnableTSVConfidence: true}, r).Extract(context.Background(), "/in/page.png")
	require.NoError(t, err)
	assert.Equal(t, "Office Action", res.Text)
	assert.Equal(t, MethodImageOCR, res.Method)
	assert.Equal(t, 2, r.called("tesseract"))

	assert.InDelta(t, 0.8, meanTSVConfidence(tsv), 1e-6)
}

func TestExtract_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oa.txt")
	require.NoError(t, os.WriteFile(path, []byte("Office Action\r\nmail date: 2024/01/15\fpage two"), 0o600))

	res, err := newTestExtractor(Config{}, &fakeRunner{}).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Office Action\nmail date: 2024/01/15 page two", res.Text)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, MethodTextFile, res.Method)
}

func TestExtract_MissingTextFile(t *testing.T) {
	_, err := newTestExtractor(Config{}, &fakeRunner{}).Extract(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, common.ErrExtraction)
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := newTestExtractor(Config{}, &fakeRunner{}).Extract(context.Background(), "/in/oa.docx")
	assert.ErrorIs(t, err, common.ErrUnsupported)
	assert.NotErrorIs(t, err, common.ErrExtraction)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "a b\n\nc", Normalize("  a\t\tb  \r\n\r\n\r\n\r\nc  "))
	assert.Equal(t, "mailed 2024/01/05", Normalize("mailed   2024/01/05"), "digits are preserved")
}

func TestHeuristicConfidence(t *testing.T) {
	assert.Zero(t, heuristicConfidence("  "))
	low := heuristicConfidence("hello")
	high := heuristicConfidence("Office Action. Application No. 17/123,456. Mailed 2024/01/15. " + strings.Repeat("Claims are rejected. ", 10))
	assert.Greater(t, high, low)
	assert.LessOrEqual(t, high, float32(1.0))
	assert.Less(t, heuristicConfidence("#$%^&*@!~#$%^&*@!~"), low)
}
