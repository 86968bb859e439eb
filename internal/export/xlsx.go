package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JulianCode-PC/oa-docket/internal/record"
)

// DocketSheet is the worksheet written by DocketXLSX.
const DocketSheet = "Docket"

const maxIssuesCell = 300

// Entry is one processed file. Result is nil when processing failed.
type Entry struct {
	Path   string
	Result *record.Result
	Err    error
}

var docketHeaders = []string{
	"File",
	"Document Type",
	"Is OA",
	"OA Type",
	"Mailing Date",
	"Due Date",
	"Due Basis",
	"Task Due",
	"Confidence",
	"Recommended Path",
	"Issues",
	"Path",
	"Error",
}

// DocketXLSX returns a workbook (as bytes) with one row per entry, in order.
func DocketXLSX(entries []Entry, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", DocketSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for i, h := range docketHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(DocketSheet, cell, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(docketHeaders), 1)
	_ = f.SetCellStyle(DocketSheet, "A1", lastHeader, bold)

	row := 2
	for _, e := range entries {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(DocketSheet, cell, v)
		}

		write(1, filepath.Base(e.Path))
		write(12, e.Path)
		if e.Err != nil {
			write(13, e.Err.Error())
		}
		if r := e.Result; r != nil {
			oa := r.OARecord
			write(2, string(oa.DocumentType))
			write(3, yesNo(oa.IsOA))
			write(4, string(oa.OAType))
			write(5, dateOrNone(oa.MailingDate))
			write(6, dateOrNone(oa.DueDate))
			if oa.DueBasis != nil {
				write(7, string(*oa.DueBasis))
			} else {
				write(7, none)
			}
			if r.Docket != nil {
				write(8, dateOrNone(r.Docket.TaskDue))
			} else {
				write(8, none)
			}
			if oa.Confidence != nil {
				write(9, *oa.Confidence)
			}
			write(10, string(r.NextStepPlan.RecommendedPath))
			write(11, truncate(strings.Join(oa.IssuesSummary, "; "), maxIssuesCell))
		}
		row++
	}

	_ = f.SetColWidth(DocketSheet, "A", "A", 28) // file
	_ = f.SetColWidth(DocketSheet, "B", "D", 12)
	_ = f.SetColWidth(DocketSheet, "E", "H", 13) // dates
	_ = f.SetColWidth(DocketSheet, "I", "J", 16)
	_ = f.SetColWidth(DocketSheet, "K", "K", 80) // issues
	_ = f.SetColWidth(DocketSheet, "L", "L", 60) // path
	_ = f.SetColWidth(DocketSheet, "M", "M", 40)
	_ = f.SetPanes(DocketSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"rows", len(entries),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
