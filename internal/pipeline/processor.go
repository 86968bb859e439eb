// Package pipeline turns one input file into an analysis record and its
// docketing chain.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/JulianCode-PC/oa-docket/constants"
	"github.com/JulianCode-PC/oa-docket/internal/classify"
	"github.com/JulianCode-PC/oa-docket/internal/common"
	"github.com/JulianCode-PC/oa-docket/internal/dates"
	"github.com/JulianCode-PC/oa-docket/internal/deadline"
	"github.com/JulianCode-PC/oa-docket/internal/docket"
	"github.com/JulianCode-PC/oa-docket/internal/entity"
	"github.com/JulianCode-PC/oa-docket/internal/extract"
	"github.com/JulianCode-PC/oa-docket/internal/issues"
	"github.com/JulianCode-PC/oa-docket/internal/ocr"
	"github.com/JulianCode-PC/oa-docket/internal/plan"
	"github.com/JulianCode-PC/oa-docket/internal/record"
)

const maxCaseRefLen = 200

// Store persists a docketed case.
type Store interface {
	SaveCase(ctx context.Context, c *entity.Case) error
}

// Options tune a single Process call.
type Options struct {
	CaseRef *string
	// Rule replaces the configured deadline rule when set.
	Rule deadline.Rule
}

// Output is everything one Process call derived.
type Output struct {
	Result      record.Result
	Case        *entity.Case
	Trace       docket.Trace
	Extraction  extract.TextExtractionResult
	NeedsReview bool
}

// Processor coordinates text extraction, analysis and docketing.
type Processor struct {
	Logger  *slog.Logger
	Cfg     common.PipelineConfig
	Extract *ExtractStage
	Chain   *docket.Chain
	Store   Store // optional
	Now     func() time.Time
}

func NewProcessor(cfg common.PipelineConfig, tx extract.TextExtractor, store Store, logger *slog.Logger) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	classifier, ok := classify.New(cfg.Classifier, cfg.OAThreshold)
	if !ok {
		return nil, common.NewAppError(common.CodeConfig,
			fmt.Sprintf("unknown classifier %q", cfg.Classifier), common.ErrInvalidInput)
	}
	rule, err := deadline.New(cfg.DeadlineRule, cfg.Months, cfg.FixedDays)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, err.Error(), common.ErrInvalidInput)
	}
	if cfg.MaxIssues <= 0 {
		cfg.MaxIssues = issues.DefaultMaxItems
	}
	chain := docket.NewChain(docket.Config{
		Jurisdiction: cfg.Jurisdiction,
		TaskLeadDays: cfg.TaskLeadDays,
	}, classifier, rule, logger)

	return &Processor{
		Logger:  logger,
		Cfg:     cfg,
		Extract: NewExtractStage(tx, logger),
		Chain:   chain,
		Store:   store,
		Now:     time.Now,
	}, nil
}

// Process analyzes the file at path in a fresh Case. Only extraction
// failures, invalid input and persistence failures are errors; documents
// that trigger no docketing rule still produce a full record.
func (p *Processor) Process(ctx context.Context, path string, opts Options) (*Output, error) {
	logger := common.LoggerFromContext(ctx, p.Logger)
	if runID := common.RunIDFromContext(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}

	if err := common.NewValidator().
		Field("path", path, common.Required).
		Field("case_ref", derefOr(opts.CaseRef, ""), common.MaxLength(maxCaseRefLen)).
		Error(); err != nil {
		return nil, err
	}

	res, needsReview, err := p.Extract.Run(ctx, path)
	if err != nil {
		logger.Error("processor.extract.failed", "path", path, "err", err)
		return nil, err
	}
	logger.Info("processor.extract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"confidence", res.Confidence,
	)

	now := p.Now()
	ch := *p.Chain
	ch.Now = func() time.Time { return now }
	ch.Logger = logger
	if opts.Rule != nil {
		ch.Rule = opts.Rule
	}

	c := ch.NewCase()
	tr := ch.Run(c, path, res.Text)
	cls := tr.Classification
	logger.Info("processor.docket.ok",
		"case_id", c.ID,
		"type", cls.DocumentType,
		"is_oa", cls.IsOA,
		"terminal", tr.Terminal().String(),
	)

	var (
		mailing *entity.Date
		due     *entity.Date
		basis   *constants.Basis
	)
	b := constants.BasisUnknown
	if cls.IsOA {
		if m, found := dates.FindMailingDate(res.Text); found {
			mailing = m.Date.Ptr()
		}
		if tr.Deadline != nil {
			due = tr.Deadline.DueDate
			if s, ok := tr.Deadline.Metadata[docket.MetaBasis].(string); ok {
				b = constants.Basis(s)
			}
		}
		basis = &b
	}

	rec := plan.Recommend(cls.IsOA, cls.Subtype, mailing)
	rec.AnnotateBasis(cls.IsOA, b)
	rec.AnnotateOverride(cls.LocalizedOverride)
	if cls.LocalizedOverride {
		logger.Warn("processor.classify.localized_override", "path", path, "confidence", cls.Confidence)
	}

	base := filepath.Base(path)
	docID := record.SimpleID("doc", base)
	oaID := record.SimpleID("oa", base)

	result := record.Result{
		InputDocument: record.InputDocument{
			DocID:            docID,
			FileName:         base,
			FilePath:         path,
			FileURI:          fileURI(path),
			ReceivedAt:       record.Timestamp(now),
			OCRText:          res.Text,
			OCRConfidence:    ocrConfidence(res),
			ExtractionMethod: res.Method,
			Pages:            res.Pages,
			Status:           record.StatusAnalyzed,
		},
		OARecord: record.OARecord{
			OAID:          oaID,
			DocID:         docID,
			DocumentType:  cls.DocumentType,
			IsOA:          cls.IsOA,
			OAType:        cls.Subtype,
			MailingDate:   mailing,
			DueDate:       due,
			DueBasis:      basis,
			IssuesSummary: issues.Summarize(res.Text, p.Cfg.MaxIssues),
			Confidence:    cls.Confidence,
			CaseRef:       opts.CaseRef,
		},
		NextStepPlan: record.NextStepPlan{
			PlanID:          record.SimpleID("plan", base),
			OAID:            oaID,
			RecommendedPath: rec.Path,
			ActionItems:     rec.ActionItems,
			RequiredInputs:  rec.RequiredInputs,
			RiskNote:        rec.RiskNote,
			CreatedAt:       record.Timestamp(now),
		},
		Docket: record.Summarize(c, tr),
	}

	if err := record.Validate(result); err != nil {
		logger.Error("processor.validate.failed", "path", path, "err", err)
		return nil, common.NewAppError(common.CodeInvalidRecord, "analysis record failed validation", err)
	}

	out := &Output{
		Result:      result,
		Case:        c,
		Trace:       tr,
		Extraction:  res,
		NeedsReview: needsReview,
	}

	if p.Store != nil {
		if err := p.Store.SaveCase(ctx, c); err != nil {
			logger.Error("processor.store.failed", "case_id", c.ID, "err", err)
			return out, common.NewAppError(common.CodeStorage, "save case "+c.ID,
				fmt.Errorf("%w: %w", common.ErrDatabase, err))
		}
		logger.Info("processor.store.ok", "case_id", c.ID)
	}
	return out, nil
}

// ocrConfidence is only reported for text that came out of tesseract.
func ocrConfidence(res extract.TextExtractionResult) *float64 {
	switch res.Method {
	case ocr.MethodPDFOCR, ocr.MethodImageOCR:
		conf := float64(res.Confidence)
		return &conf
	}
	return nil
}

func fileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
