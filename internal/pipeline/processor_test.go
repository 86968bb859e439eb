package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianCode-PC/oa-docket/constants"
	"github.com/JulianCode-PC/oa-docket/internal/common"
	"github.com/JulianCode-PC/oa-docket/internal/deadline"
	"github.com/JulianCode-PC/oa-docket/internal/docket"
	"github.com/JulianCode-PC/oa-docket/internal/entity"
	"github.com/JulianCode-PC/oa-docket/internal/extract"
	"github.com/JulianCode-PC/oa-docket/internal/issues"
	"github.com/JulianCode-PC/oa-docket/internal/plan"
	"github.com/JulianCode-PC/oa-docket/internal/record"
)

const (
	oaText = `UNITED STATES PATENT AND TRADEMARK OFFICE
Application No. 17/123456
Office Action Summary - Non-Final Rejection
mail date: 2024/01/15
Claims 1-3 are rejected under 35 U.S.C. 103 as being unpatentable over US 9,876,543.`

	undatedOAText = `Office Action Summary - Non-Final Rejection
Claims 1-3 are rejected under 35 U.S.C. 103.`

	newsletterText = "Quarterly newsletter from the firm."
)

var fixedNow = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

type fakeStore struct {
	saved []*entity.Case
	err   error
}

func (s *fakeStore) SaveCase(_ context.Context, c *entity.Case) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, c)
	return nil
}

func newTestProcessor(t *testing.T, texts map[string]string, store Store) *Processor {
	t.Helper()
	cfg := common.FromViper(common.NewViper())
	p, err := NewProcessor(cfg.Pipeline, extract.StaticExtractor{Texts: texts}, store, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	p.Now = func() time.Time { return fixedNow }
	p.Chain.IDs = docket.NewSequenceGenerator("id")
	return p
}

func TestProcess_OfficeActionWithMailingDate(t *testing.T) {
	ref := "CASE-42"
	p := newTestProcessor(t, map[string]string{"/in/oa.pdf": oaText}, nil)

	out, err := p.Process(context.Background(), "/in/oa.pdf", Options{CaseRef: &ref})
	require.NoError(t, err)
	assert.False(t, out.NeedsReview)

	in := out.Result.InputDocument
	assert.Equal(t, "doc_oa-pdf", in.DocID)
	assert.Equal(t, "oa.pdf", in.FileName)
	assert.Equal(t, "file:///in/oa.pdf", in.FileURI)
	assert.Equal(t, "2024-03-01T10:00:00Z", in.ReceivedAt)
	assert.Equal(t, record.StatusAnalyzed, in.Status)
	assert.Equal(t, "static", in.ExtractionMethod)
	assert.Nil(t, in.OCRConfidence)

	oa := out.Result.OARecord
	assert.Equal(t, "oa_oa-pdf", oa.OAID)
	assert.True(t, oa.IsOA)
	assert.Equal(t, constants.DocumentTypeOA, oa.DocumentType)
	assert.Equal(t, constants.OATypeNonFinal, oa.OAType)
	require.NotNil(t, oa.MailingDate)
	assert.Equal(t, "2024-01-15", oa.MailingDate.String())
	require.NotNil(t, oa.DueDate)
	assert.Equal(t, "2024-04-15", oa.DueDate.String())
	require.NotNil(t, oa.DueBasis)
	assert.Equal(t, constants.BasisMailingDate, *oa.DueBasis)
	require.NotNil(t, oa.Confidence)
	assert.InDelta(t, 1.0, *oa.Confidence, 1e-9)
	assert.Equal(t, &ref, oa.CaseRef)

	require.NotEmpty(t, oa.IssuesSummary)
	assert.Contains(t, oa.IssuesSummary[0], "Claims 1-3 are rejected")
	assert.True(t, anyContains(oa.IssuesSummary, "103"), "expected a bullet naming ground 103")

	np := out.Result.NextStepPlan
	assert.Equal(t, "plan_oa-pdf", np.PlanID)
	assert.Equal(t, oa.OAID, np.OAID)
	assert.Equal(t, constants.PathAmend, np.RecommendedPath)
	assert.Equal(t, plan.RiskNonFinal, np.RiskNote)

	// The record and the docket chain agree on the due date.
	require.NotNil(t, out.Trace.Deadline)
	assert.Equal(t, oa.DueDate, out.Trace.Deadline.DueDate)
	require.NotNil(t, out.Trace.Task)
	assert.Equal(t, "2024-04-01", out.Trace.Task.DueDate.String())

	d := out.Result.Docket
	require.NotNil(t, d)
	assert.Equal(t, "id-1", d.CaseID)
	assert.Equal(t, "TW", d.Jurisdiction)
	require.NotNil(t, d.ApplicationNumber)
	assert.Equal(t, "17/123456", *d.ApplicationNumber)
	assert.Equal(t, constants.DocumentStatusParsed, d.DocumentStatus)
	assert.Equal(t, oa.DueDate, d.DeadlineDue)
	require.NotNil(t, d.TaskDue)
	assert.Equal(t, "2024-04-01", d.TaskDue.String())
	assert.Len(t, d.Outcomes, 4)
}

func TestProcess_EmptyText(t *testing.T) {
	p := newTestProcessor(t, map[string]string{"/in/scan.pdf": ""}, nil)

	out, err := p.Process(context.Background(), "/in/scan.pdf", Options{})
	require.NoError(t, err)
	assert.True(t, out.NeedsReview)

	oa := out.Result.OARecord
	assert.False(t, oa.IsOA)
	require.NotNil(t, oa.Confidence)
	assert.LessOrEqual(t, *oa.Confidence, 0.2)
	assert.Equal(t, []string{issues.NoTextBullet}, oa.IssuesSummary)
	assert.Nil(t, oa.MailingDate)
	assert.Nil(t, oa.DueDate)
	assert.Nil(t, oa.DueBasis)
	assert.Equal(t, constants.OATypeUnknown, oa.OAType)

	assert.Equal(t, constants.PathNeedMoreInfo, out.Result.NextStepPlan.RecommendedPath)
	assert.Equal(t, plan.RiskNotOA, out.Result.NextStepPlan.RiskNote)

	assert.Empty(t, out.Case.Events)
	assert.Empty(t, out.Case.Deadlines)
	assert.Empty(t, out.Case.Tasks)
	assert.Equal(t, docket.StageEvent, out.Trace.Terminal().Stage)
	assert.False(t, out.Trace.Terminal().Matched())
}

func TestProcess_UnknownDocumentStaysNew(t *testing.T) {
	p := newTestProcessor(t, map[string]string{"/in/news.txt": newsletterText}, nil)

	out, err := p.Process(context.Background(), "/in/news.txt", Options{})
	require.NoError(t, err)

	assert.Equal(t, constants.DocumentTypeUnknown, out.Result.OARecord.DocumentType)
	require.Len(t, out.Case.Documents, 1)
	assert.Equal(t, constants.DocumentStatusNew, out.Case.Documents[0].Status)
	assert.Empty(t, out.Case.Events)
	assert.Equal(t, constants.DocumentStatusNew, out.Result.Docket.DocumentStatus)
	assert.Nil(t, out.Result.Docket.EventID)
}

func TestProcess_ReceivedDateFallback(t *testing.T) {
	p := newTestProcessor(t, map[string]string{"/in/oa.txt": undatedOAText}, nil)

	out, err := p.Process(context.Background(), "/in/oa.txt", Options{})
	require.NoError(t, err)

	oa := out.Result.OARecord
	assert.True(t, oa.IsOA)
	assert.Nil(t, oa.MailingDate)
	require.NotNil(t, oa.DueDate)
	assert.Equal(t, "2024-06-01", oa.DueDate.String())
	require.NotNil(t, oa.DueBasis)
	assert.Equal(t, constants.BasisReceivedAt, *oa.DueBasis)
	assert.Equal(t, plan.RiskNoMailingDate+" (Due date computed using received_at as fallback.)",
		out.Result.NextStepPlan.RiskNote)
}

func TestProcess_LocalizedOverrideNoted(t *testing.T) {
	p := newTestProcessor(t, map[string]string{"/in/weak.txt": "office action"}, nil)

	out, err := p.Process(context.Background(), "/in/weak.txt", Options{})
	require.NoError(t, err)

	oa := out.Result.OARecord
	assert.True(t, oa.IsOA)
	require.NotNil(t, oa.Confidence)
	assert.Less(t, *oa.Confidence, 0.35)
	assert.True(t, strings.HasSuffix(out.Result.NextStepPlan.RiskNote, plan.OverrideNote))

	p = newTestProcessor(t, map[string]string{"/in/oa.txt": oaText}, nil)
	out, err = p.Process(context.Background(), "/in/oa.txt", Options{})
	require.NoError(t, err)
	assert.NotContains(t, out.Result.NextStepPlan.RiskNote, plan.OverrideNote)
}

func TestProcess_RuleOverride(t *testing.T) {
	p := newTestProcessor(t, map[string]string{"/in/oa.pdf": oaText}, nil)

	out, err := p.Process(context.Background(), "/in/oa.pdf", Options{Rule: deadline.FixedDaysRule{Days: 90}})
	require.NoError(t, err)
	require.NotNil(t, out.Result.OARecord.DueDate)
	assert.Equal(t, "2024-04-14", out.Result.OARecord.DueDate.String())
	assert.Equal(t, "OA_RESPONSE_DUE = mailing_date + 90 days", *out.Result.Docket.RuleBasis)

	// The configured rule is untouched.
	out, err = p.Process(context.Background(), "/in/oa.pdf", Options{})
	require.NoError(t, err)
	assert.Equal(t, "2024-04-15", out.Result.OARecord.DueDate.String())
}

func TestProcess_Errors(t *testing.T) {
	p := newTestProcessor(t, map[string]string{}, nil)

	_, err := p.Process(context.Background(), "", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = p.Process(context.Background(), "/in/missing.pdf", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)
	assert.True(t, common.IsCode(err, common.CodeExtractionFailed))

	_, err = p.Process(context.Background(), "/in/sheet.docx", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnsupported)
}

func TestProcess_Store(t *testing.T) {
	store := &fakeStore{}
	p := newTestProcessor(t, map[string]string{"/in/oa.pdf": oaText}, store)

	out, err := p.Process(context.Background(), "/in/oa.pdf", Options{})
	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	assert.Same(t, out.Case, store.saved[0])

	store.err = errors.New("disk full")
	out, err = p.Process(context.Background(), "/in/oa.pdf", Options{})
	require.Error(t, err)
	assert.NotNil(t, out)
	assert.ErrorIs(t, err, common.ErrDatabase)
	assert.True(t, common.IsCode(err, common.CodeStorage))
}

func TestNewProcessor_BadConfig(t *testing.T) {
	_, err := NewProcessor(common.PipelineConfig{Classifier: "neural"}, extract.StaticExtractor{}, nil, nil)
	assert.True(t, common.IsCode(err, common.CodeConfig))

	_, err = NewProcessor(common.PipelineConfig{DeadlineRule: "weeks"}, extract.StaticExtractor{}, nil, nil)
	assert.True(t, common.IsCode(err, common.CodeConfig))
}

type confidenceExtractor struct {
	conf float32
}

func (e confidenceExtractor) Extract(context.Context, string) (extract.TextExtractionResult, error) {
	return extract.TextExtractionResult{Text: "blurry", Method: "image-ocr", Confidence: e.conf}, nil
}

func TestExtractStage_Review(t *testing.T) {
	s := NewExtractStage(confidenceExtractor{conf: 0.4}, slog.New(slog.DiscardHandler))
	res, review, err := s.Run(context.Background(), "/in/photo.png")
	require.NoError(t, err)
	assert.True(t, review)
	assert.Equal(t, "blurry", res.Text)

	s = NewExtractStage(confidenceExtractor{conf: 0.9}, nil)
	_, review, err = s.Run(context.Background(), "/in/photo.png")
	require.NoError(t, err)
	assert.False(t, review)

	// Text layers carry no OCR confidence to judge.
	_, review, err = s.Run(context.Background(), "/in/letter.pdf")
	require.NoError(t, err)
	assert.False(t, review)
}

func anyContains(bullets []string, sub string) bool {
	for _, b := range bullets {
		if strings.Contains(b, sub) {
			return true
		}
	}
	return false
}
