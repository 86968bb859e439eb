package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/JulianCode-PC/oa-docket/constants"
	"github.com/JulianCode-PC/oa-docket/internal/common"
	"github.com/JulianCode-PC/oa-docket/internal/entity"
)

// CaseSummary is a stored case with the size of each child collection.
type CaseSummary struct {
	ID                string
	Jurisdiction      string
	ApplicationNumber *string
	Documents         int
	Events            int
	Deadlines         int
	Tasks             int
	// NextDue is the earliest pending deadline, if any has a due date.
	NextDue *entity.Date
}

// DueDeadline is a pending deadline joined with its case.
type DueDeadline struct {
	ID                string
	CaseID            string
	ApplicationNumber *string
	DeadlineType      constants.DeadlineType
	DueDate           entity.Date
	RuleBasis         string
}

type DocketRepository struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewDocketRepository(db *DB, log *slog.Logger) *DocketRepository {
	if log == nil {
		log = slog.Default()
	}
	return &DocketRepository{db: db, log: log, now: time.Now}
}

// SaveCase inserts c and all of its children in one transaction.
func (r *DocketRepository) SaveCase(ctx context.Context, c *entity.Case) (err error) {
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Error("rollback failed", "case_id", c.ID, "err", rbErr)
			}
		}
	}()

	b := r.db.builder()
	exec := func(what string, ib *entsql.InsertBuilder) error {
		query, args := ib.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", what, err)
		}
		return nil
	}

	if err = exec("case", b.Insert("cases").
		Columns("id", "jurisdiction", "application_number", "filing_date", "created_at").
		Values(c.ID, c.Jurisdiction, c.ApplicationNumber, dateArg(c.FilingDate), r.now())); err != nil {
		r.log.Error("case insert failed", "case_id", c.ID, "err", err)
		return err
	}

	for _, d := range c.Documents {
		if err = exec("document", b.Insert("documents").
			Columns("id", "case_id", "source", "document_type", "received_date", "received_at",
				"external_reference", "title", "file_path", "raw_text", "status").
			Values(d.ID, c.ID, string(d.Source), string(d.DocumentType), d.ReceivedDate.String(), d.ReceivedAt,
				d.ExternalReference, d.Title, d.FilePath, d.RawText, string(d.Status))); err != nil {
			return err
		}
	}

	for _, e := range c.Events {
		meta, merr := metadataArg(e.Metadata)
		if merr != nil {
			return merr
		}
		if err = exec("event", b.Insert("events").
			Columns("id", "case_id", "document_id", "event_type", "event_date", "description", "status", "metadata", "created_at").
			Values(e.ID, c.ID, e.DocumentID, string(e.EventType), e.EventDate.String(), e.Description,
				string(e.Status), meta, e.CreatedAt)); err != nil {
			return err
		}
	}

	for _, dl := range c.Deadlines {
		meta, merr := metadataArg(dl.Metadata)
		if merr != nil {
			return merr
		}
		if err = exec("deadline", b.Insert("deadlines").
			Columns("id", "case_id", "event_id", "deadline_type", "due_date", "grace_due_date",
				"status", "rule_basis", "metadata", "created_at").
			Values(dl.ID, c.ID, dl.EventID, string(dl.DeadlineType), dateArg(dl.DueDate), dateArg(dl.GraceDueDate),
				string(dl.Status), dl.RuleBasis, meta, dl.CreatedAt)); err != nil {
			return err
		}
	}

	for _, t := range c.Tasks {
		meta, merr := metadataArg(t.Metadata)
		if merr != nil {
			return merr
		}
		if err = exec("task", b.Insert("tasks").
			Columns("id", "case_id", "event_id", "deadline_id", "task_type", "title", "description",
				"assignee", "priority", "due_date", "status", "metadata", "created_at").
			Values(t.ID, c.ID, t.EventID, t.DeadlineID, string(t.TaskType), t.Title, t.Description,
				t.Assignee, string(t.Priority), dateArg(t.DueDate), string(t.Status), meta, t.CreatedAt)); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Info("case saved",
		"case_id", c.ID,
		"documents", len(c.Documents),
		"events", len(c.Events),
		"deadlines", len(c.Deadlines),
		"tasks", len(c.Tasks),
	)
	return nil
}

// GetCaseSummary reads a stored case back with its child counts.
func (r *DocketRepository) GetCaseSummary(ctx context.Context, caseID string) (*CaseSummary, error) {
	b := r.db.builder()

	query, args := b.Select("id", "jurisdiction", "application_number").
		From(b.Table("cases")).
		Where(entsql.EQ("id", caseID)).
		Query()
	var (
		s     CaseSummary
		appNo sql.NullString
	)
	err := r.db.SQL.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.Jurisdiction, &appNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("case %s: %w", caseID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get case %s: %w", caseID, err)
	}
	if appNo.Valid {
		s.ApplicationNumber = &appNo.String
	}

	counts := []struct {
		table string
		dst   *int
	}{
		{"documents", &s.Documents},
		{"events", &s.Events},
		{"deadlines", &s.Deadlines},
		{"tasks", &s.Tasks},
	}
	for _, c := range counts {
		query, args := b.Select(entsql.Count("*")).
			From(b.Table(c.table)).
			Where(entsql.EQ("case_id", caseID)).
			Query()
		if err := r.db.SQL.QueryRowContext(ctx, query, args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}

	query, args = b.Select("due_date").
		From(b.Table("deadlines")).
		Where(entsql.And(
			entsql.EQ("case_id", caseID),
			entsql.EQ("status", string(constants.DeadlineStatusPending)),
			entsql.NotNull("due_date"),
		)).
		OrderBy("due_date").
		Limit(1).
		Query()
	var due string
	switch err := r.db.SQL.QueryRowContext(ctx, query, args...).Scan(&due); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("next due for case %s: %w", caseID, err)
	default:
		d, err := entity.ParseDate(due)
		if err != nil {
			return nil, fmt.Errorf("stored due date %q: %w", due, err)
		}
		s.NextDue = &d
	}
	return &s, nil
}

// DueBefore lists pending deadlines due on or before cutoff, earliest first.
func (r *DocketRepository) DueBefore(ctx context.Context, cutoff entity.Date) ([]DueDeadline, error) {
	b := r.db.builder()
	d := b.Table("deadlines").As("d")
	c := b.Table("cases").As("c")

	query, args := b.Select(d.C("id"), d.C("case_id"), c.C("application_number"),
		d.C("deadline_type"), d.C("due_date"), d.C("rule_basis")).
		From(d).
		Join(c).On(d.C("case_id"), c.C("id")).
		Where(entsql.And(
			entsql.NotNull(d.C("due_date")),
			entsql.LTE(d.C("due_date"), cutoff.String()),
			entsql.EQ(d.C("status"), string(constants.DeadlineStatusPending)),
		)).
		OrderBy(d.C("due_date"), d.C("id")).
		Query()

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query due deadlines: %w", err)
	}
	defer rows.Close()

	var out []DueDeadline
	for rows.Next() {
		var (
			dd    DueDeadline
			appNo sql.NullString
			due   string
		)
		if err := rows.Scan(&dd.ID, &dd.CaseID, &appNo, &dd.DeadlineType, &due, &dd.RuleBasis); err != nil {
			return nil, fmt.Errorf("scan due deadline: %w", err)
		}
		if appNo.Valid {
			dd.ApplicationNumber = &appNo.String
		}
		if dd.DueDate, err = entity.ParseDate(due); err != nil {
			return nil, fmt.Errorf("stored due date %q: %w", due, err)
		}
		out = append(out, dd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func dateArg(d *entity.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

func metadataArg(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(b), nil
}
