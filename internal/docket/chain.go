// Package docket derives the Document → Event → Deadline → Task chain for a
// case. Each stage either produces its record or reports a NoMatch Outcome;
// rule misses never surface as errors.
package docket

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/JulianCode-PC/oa-docket/constants"
	"github.com/JulianCode-PC/oa-docket/internal/classify"
	"github.com/JulianCode-PC/oa-docket/internal/dates"
	"github.com/JulianCode-PC/oa-docket/internal/deadline"
	"github.com/JulianCode-PC/oa-docket/internal/entity"
)

const (
	DefaultJurisdiction = "TW"
	DefaultTaskLeadDays = 14

	// Event metadata keys.
	MetaParser      = "parser"
	MetaDateSource  = "date_source"
	MetaDateGrammar = "date_grammar"
	MetaClassifier  = "classifier"
	MetaConfidence  = "confidence"

	// Deadline and task metadata keys.
	MetaBaseDate = "base_date"
	MetaBasis    = "basis"
	MetaRule     = "rule"
	MetaLeadDays = "lead_days"

	DateSourceText     = "document_text"
	DateSourceReceived = "received_date"

	parserName = "heuristic"
)

// eventRules maps a document type to the event it triggers.
var eventRules = map[constants.DocumentType]constants.EventType{
	constants.DocumentTypeOA: constants.EventTypeOAReceived,
}

// deadlineRules maps an event type to the deadline it opens.
var deadlineRules = map[constants.EventType]constants.DeadlineType{
	constants.EventTypeOAReceived: constants.DeadlineTypeOAResponseDue,
}

type taskTemplate struct {
	Type        constants.TaskType
	Title       string
	Description string
	Priority    constants.Priority
}

// taskRules maps a deadline type to the internal work item that prepares for it.
var taskRules = map[constants.DeadlineType]taskTemplate{
	constants.DeadlineTypeOAResponseDue: {
		Type:        constants.TaskTypeDraftOAResponse,
		Title:       "Draft OA response",
		Description: "Prepare draft response to OA",
		Priority:    constants.PriorityHigh,
	},
}

// Config tunes a Chain.
type Config struct {
	Jurisdiction string
	TaskLeadDays int
}

// Chain derives docketing records for one case at a time. A Chain holds no
// per-run state; callers construct a fresh Case for every document.
type Chain struct {
	Cfg        Config
	IDs        IDGenerator
	Now        func() time.Time
	Classifier classify.Strategy
	Rule       deadline.Rule
	Logger     *slog.Logger
}

func NewChain(cfg Config, classifier classify.Strategy, rule deadline.Rule, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Jurisdiction == "" {
		cfg.Jurisdiction = DefaultJurisdiction
	}
	if cfg.TaskLeadDays <= 0 {
		cfg.TaskLeadDays = DefaultTaskLeadDays
	}
	if classifier == nil {
		classifier, _ = classify.New(classify.StrategyEither, classify.DefaultThreshold)
	}
	if rule == nil {
		rule = deadline.MonthRule{Months: deadline.DefaultMonths}
	}
	return &Chain{
		Cfg:        cfg,
		IDs:        UUIDGenerator{},
		Now:        time.Now,
		Classifier: classifier,
		Rule:       rule,
		Logger:     logger,
	}
}

// NewCase starts an empty case in the configured jurisdiction.
func (ch *Chain) NewCase() *entity.Case {
	return &entity.Case{ID: ch.IDs.NewID(), Jurisdiction: ch.Cfg.Jurisdiction}
}

// Intake classifies text and appends a NEW Document to c. It always succeeds;
// unclassifiable text yields DocumentTypeUnknown.
func (ch *Chain) Intake(c *entity.Case, path, text string) (*entity.Document, classify.Classification) {
	cls := ch.Classifier.Classify(text)
	now := ch.Now()

	title := fmt.Sprintf("%s %s", cls.DocumentType, formatLabel(path))
	if m, ok := dates.FindFirst(text); ok {
		title = fmt.Sprintf("%s (found date %s)", title, m.Date)
	}

	doc := &entity.Document{
		ID:           ch.IDs.NewID(),
		CaseID:       c.ID,
		Source:       constants.SourceOffice,
		DocumentType: cls.DocumentType,
		ReceivedDate: entity.DateOf(now),
		ReceivedAt:   now,
		Title:        title,
		FilePath:     path,
		RawText:      text,
		Status:       constants.DocumentStatusNew,
	}
	c.AddDocument(doc)

	ch.Logger.Info("document intake",
		"case_id", c.ID, "document_id", doc.ID,
		"type", doc.DocumentType, "strategy", cls.Strategy, "signals", len(cls.Signals),
	)
	return doc, cls
}

// DocumentToEvent derives the event triggered by doc, dated from the document
// text when a mailing date can be found and from the received date otherwise.
// On a match doc moves from NEW to PARSED.
func (ch *Chain) DocumentToEvent(c *entity.Case, doc *entity.Document) (*entity.Event, Outcome) {
	evType, ok := eventRules[doc.DocumentType]
	if !ok {
		return nil, noMatch(StageEvent, "document_type %s != %s", doc.DocumentType, constants.DocumentTypeOA)
	}

	meta := map[string]any{MetaParser: parserName}
	evDate := doc.ReceivedDate
	if m, found := dates.FindMailingDate(doc.RawText); found {
		evDate = m.Date
		meta[MetaDateSource] = DateSourceText
		meta[MetaDateGrammar] = m.Grammar
	} else {
		meta[MetaDateSource] = DateSourceReceived
	}

	docID := doc.ID
	ev := &entity.Event{
		ID:          ch.IDs.NewID(),
		CaseID:      c.ID,
		DocumentID:  &docID,
		EventType:   evType,
		EventDate:   evDate,
		CreatedAt:   ch.Now(),
		Description: fmt.Sprintf("%s detected from document text", doc.DocumentType),
		Status:      constants.EventStatusOpen,
		Metadata:    meta,
	}
	c.AddEvent(ev)
	doc.Status = constants.DocumentStatusParsed

	ch.Logger.Info("event derived",
		"case_id", c.ID, "event_id", ev.ID, "type", ev.EventType,
		"event_date", ev.EventDate, "date_source", meta[MetaDateSource],
	)
	return ev, matched(StageEvent)
}

// EventToDeadline applies the configured deadline rule to ev. A text-derived
// event date is authoritative; otherwise the source document's receipt
// timestamp is the fallback base. The Deadline is created even when the rule
// could not produce a due date.
func (ch *Chain) EventToDeadline(c *entity.Case, ev *entity.Event) (*entity.Deadline, Outcome) {
	dlType, ok := deadlineRules[ev.EventType]
	if !ok {
		return nil, noMatch(StageDeadline, "no deadline rule for event_type %s", ev.EventType)
	}

	var in deadline.Input
	if ev.Metadata[MetaDateSource] == DateSourceText {
		d := ev.EventDate
		in.Authoritative = &d
	} else {
		in.Fallback = fallbackBase(c, ev)
	}
	res := ch.Rule.Compute(in)

	meta := map[string]any{
		MetaBasis: string(res.Basis),
		MetaRule:  ch.Rule.Name(),
	}
	if res.Base != nil {
		meta[MetaBaseDate] = res.Base.String()
	} else {
		meta[MetaBaseDate] = nil
	}

	dl := &entity.Deadline{
		ID:           ch.IDs.NewID(),
		CaseID:       c.ID,
		EventID:      ev.ID,
		DeadlineType: dlType,
		DueDate:      res.Due,
		CreatedAt:    ch.Now(),
		Status:       constants.DeadlineStatusPending,
		RuleBasis:    fmt.Sprintf("%s = %s", dlType, res.Description),
		Metadata:     meta,
	}
	c.AddDeadline(dl)

	if res.Due == nil {
		ch.Logger.Warn("deadline has no due date", "case_id", c.ID, "deadline_id", dl.ID, "basis", res.Basis)
	} else {
		ch.Logger.Info("deadline derived", "case_id", c.ID, "deadline_id", dl.ID, "due", res.Due, "basis", res.Basis)
	}
	return dl, matched(StageDeadline)
}

// DeadlineToTask schedules the preparatory task for dl, due TaskLeadDays
// before the deadline. The task due date stays nil when dl has none.
func (ch *Chain) DeadlineToTask(c *entity.Case, dl *entity.Deadline) (*entity.Task, Outcome) {
	tpl, ok := taskRules[dl.DeadlineType]
	if !ok {
		return nil, noMatch(StageTask, "no task rule for deadline_type %s", dl.DeadlineType)
	}

	var due *entity.Date
	if dl.DueDate != nil {
		due = dl.DueDate.AddDays(-ch.Cfg.TaskLeadDays).Ptr()
	}
	dlID, evID := dl.ID, dl.EventID
	task := &entity.Task{
		ID:          ch.IDs.NewID(),
		CaseID:      c.ID,
		EventID:     &evID,
		DeadlineID:  &dlID,
		TaskType:    tpl.Type,
		Title:       tpl.Title,
		Description: tpl.Description,
		Priority:    tpl.Priority,
		CreatedAt:   ch.Now(),
		DueDate:     due,
		Status:      constants.TaskStatusTodo,
		Metadata:    map[string]any{MetaLeadDays: ch.Cfg.TaskLeadDays},
	}
	c.AddTask(task)

	ch.Logger.Info("task scheduled", "case_id", c.ID, "task_id", task.ID, "due", due)
	return task, matched(StageTask)
}

// Trace records everything one Run derived. Records past the terminal
// stage are nil.
type Trace struct {
	Document       *entity.Document
	Classification classify.Classification
	Event          *entity.Event
	Deadline       *entity.Deadline
	Task           *entity.Task
	Outcomes       []Outcome
}

// Terminal is the last stage outcome reached.
func (t Trace) Terminal() Outcome {
	if len(t.Outcomes) == 0 {
		return Outcome{}
	}
	return t.Outcomes[len(t.Outcomes)-1]
}

// Complete reports whether the chain reached a task.
func (t Trace) Complete() bool { return t.Task != nil }

// Run pushes one document's text through every stage, stopping at the first
// NoMatch. It back-fills c.ApplicationNumber when the text names one.
func (ch *Chain) Run(c *entity.Case, path, text string) Trace {
	var tr Trace
	tr.Document, tr.Classification = ch.Intake(c, path, text)
	tr.Outcomes = append(tr.Outcomes, matched(StageIntake))

	if c.ApplicationNumber == nil {
		if appNo, ok := GuessApplicationNumber(text); ok {
			c.ApplicationNumber = &appNo
		}
	}

	ev, o := ch.DocumentToEvent(c, tr.Document)
	tr.Outcomes = append(tr.Outcomes, o)
	if !o.Matched() {
		ch.Logger.Info("no rule matched", "case_id", c.ID, "stage", o.Stage, "reason", o.Reason)
		return tr
	}
	ev.Metadata[MetaClassifier] = tr.Classification.Strategy
	if tr.Classification.Confidence != nil {
		ev.Metadata[MetaConfidence] = *tr.Classification.Confidence
	}
	tr.Event = ev

	dl, o := ch.EventToDeadline(c, ev)
	tr.Outcomes = append(tr.Outcomes, o)
	if !o.Matched() {
		ch.Logger.Info("no rule matched", "case_id", c.ID, "stage", o.Stage, "reason", o.Reason)
		return tr
	}
	tr.Deadline = dl

	task, o := ch.DeadlineToTask(c, dl)
	tr.Outcomes = append(tr.Outcomes, o)
	if !o.Matched() {
		ch.Logger.Info("no rule matched", "case_id", c.ID, "stage", o.Stage, "reason", o.Reason)
		return tr
	}
	tr.Task = task
	return tr
}

func formatLabel(path string) string {
	if f := constants.MapExtToFormat(filepath.Ext(path)); f != "" {
		return f
	}
	return "document"
}

// fallbackBase returns the receipt timestamp of the event's source document,
// or the event date itself when the event has no document.
func fallbackBase(c *entity.Case, ev *entity.Event) string {
	if ev.DocumentID != nil {
		if doc := c.DocumentByID(*ev.DocumentID); doc != nil && !doc.ReceivedAt.IsZero() {
			return doc.ReceivedAt.Format(time.RFC3339)
		}
	}
	if ev.EventDate.IsZero() {
		return ""
	}
	return ev.EventDate.String()
}
