// Package export renders docket records for people: console tables and
// spreadsheet reports.
package export

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/JulianCode-PC/oa-docket/internal/docket"
	"github.com/JulianCode-PC/oa-docket/internal/entity"
	"github.com/JulianCode-PC/oa-docket/internal/repository"
)

const none = "-"

// CaseTable lists every record of c followed by the outcome of each chain stage.
func CaseTable(c *entity.Case, outcomes []docket.Outcome) string {
	tw := table.NewWriter()
	appNo := none
	if c.ApplicationNumber != nil {
		appNo = *c.ApplicationNumber
	}
	tw.SetTitle("Case " + c.ID + " (" + c.Jurisdiction + ", application " + appNo + ")")
	tw.AppendHeader(table.Row{"Record", "ID", "Type", "Date", "Status", "Detail"})

	for _, d := range c.Documents {
		tw.AppendRow(table.Row{"document", d.ID, d.DocumentType, d.ReceivedDate, d.Status, d.Title})
	}
	for _, e := range c.Events {
		tw.AppendRow(table.Row{"event", e.ID, e.EventType, e.EventDate, e.Status, e.Description})
	}
	for _, dl := range c.Deadlines {
		tw.AppendRow(table.Row{"deadline", dl.ID, dl.DeadlineType, dateOrNone(dl.DueDate), dl.Status, dl.RuleBasis})
	}
	for _, t := range c.Tasks {
		tw.AppendRow(table.Row{"task", t.ID, t.TaskType, dateOrNone(t.DueDate), t.Status, t.Title + " [" + string(t.Priority) + "]"})
	}
	out := tw.Render()

	if len(outcomes) == 0 {
		return out
	}
	ow := table.NewWriter()
	ow.AppendHeader(table.Row{"Stage", "Result", "Reason"})
	for _, o := range outcomes {
		reason := o.Reason
		if reason == "" {
			reason = none
		}
		ow.AppendRow(table.Row{o.Stage, o.Kind, reason})
	}
	return out + "\n" + ow.Render()
}

// DueTable lists pending deadlines as returned by the docket store.
func DueTable(due []repository.DueDeadline) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Due", "Deadline", "Type", "Case", "Application", "Basis"})
	for _, d := range due {
		appNo := none
		if d.ApplicationNumber != nil {
			appNo = *d.ApplicationNumber
		}
		tw.AppendRow(table.Row{d.DueDate, d.ID, d.DeadlineType, d.CaseID, appNo, d.RuleBasis})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "Total", len(due)})
	return tw.Render()
}

func dateOrNone(d *entity.Date) string {
	if d == nil {
		return none
	}
	return d.String()
}
