package report

import (
	"strings"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/completion"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/xuri/excelize/v2"
)

const missingSheet = "Missing"

type DiscrepancyHeader struct {
	WorkerName string
	SiteName   string
	Month      string
	Status     string
	Tally      timesheet.Tally
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func hoursCell(h *float64) any {
	if h == nil {
		return ""
	}
	return *h
}

// newWorkbook returns a file whose first sheet is renamed and a bold style id
func newWorkbook(sheet string) (*excelize.File, int, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, 0, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, bold, nil
}

// writeTable writes a bold header row at startRow followed by rows
func writeTable(f *excelize.File, sheet string, bold, startRow int, header []any, rows [][]any) error {
	first, err := excelize.CoordinatesToCellName(1, startRow)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, first, &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), startRow)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, first, last, bold); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, startRow+1+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// writePairs writes label/value pairs down columns A and B from row 1
func writePairs(f *excelize.File, sheet string, bold int, pairs [][2]any) error {
	for i, p := range pairs {
		label, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		value, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, label, p[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, value, p[1]); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, label, label, bold); err != nil {
			return err
		}
	}
	return nil
}

// BuildDiscrepancyWorkbook lays out one timesheet's mismatch days under a summary block
func BuildDiscrepancyWorkbook(sheet string, h DiscrepancyHeader, days []timesheet.MismatchDay) (*excelize.File, error) {
	f, bold, err := newWorkbook(sheet)
	if err != nil {
		return nil, err
	}

	pairs := [][2]any{
		{"Worker", h.WorkerName},
		{"Site", h.SiteName},
		{"Month", h.Month},
		{"Status", h.Status},
		{"Mismatched days", len(days)},
		{"Total hours", h.Tally.TotalHours},
	}
	if err := writePairs(f, sheet, bold, pairs); err != nil {
		f.Close()
		return nil, err
	}

	rows := make([][]any, 0, len(days))
	for _, d := range days {
		rows = append(rows, []any{
			d.Day,
			string(d.Reason),
			deref(d.TimesheetShift),
			hoursCell(d.TimesheetHours),
			deref(d.ScheduleShift),
			hoursCell(d.ScheduleHours),
		})
	}
	header := []any{"Day", "Reason", "Timesheet shift", "Timesheet hours", "Rota shift", "Rota hours"}
	if err := writeTable(f, sheet, bold, len(pairs)+2, header, rows); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "F", 18); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// BuildCompletionWorkbook writes the counters and summary rows on the first
// sheet and the missing-submission list on a second one.
func BuildCompletionWorkbook(sheet string, p completion.Progress) (*excelize.File, error) {
	f, bold, err := newWorkbook(sheet)
	if err != nil {
		return nil, err
	}

	pairs := [][2]any{
		{"Month", p.Month.String()},
		{"Total required", p.TotalRequired},
		{"Submitted", p.SubmittedCount},
		{"Forwarded", p.ForwardedCount},
	}
	if err := writePairs(f, sheet, bold, pairs); err != nil {
		f.Close()
		return nil, err
	}

	rows := make([][]any, 0, len(p.Rows))
	for _, r := range p.Rows {
		rows = append(rows, []any{
			r.WorkerID,
			r.DisplayName,
			r.Classification,
			strings.Join(r.SiteIDs, ", "),
			r.Submitted,
			r.Forwarded,
			r.Tally.TotalHours,
			r.Tally.SleepIn,
			r.Tally.AnnualLeave,
			r.Tally.Sickness,
			r.Tally.WakingNight,
			r.Tally.OtherLeave,
			r.Tally.WorkedDays,
		})
	}
	header := []any{
		"Worker", "Name", "Classification", "Sites", "Submitted", "Forwarded", "Total hours",
		"Sleep-in", "Annual leave", "Sickness", "Waking night", "Other leave", "Worked days",
	}
	if err := writeTable(f, sheet, bold, len(pairs)+2, header, rows); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(missingSheet); err != nil {
		f.Close()
		return nil, err
	}
	missing := make([][]any, 0, len(p.Missing))
	for _, m := range p.Missing {
		missing = append(missing, []any{m.WorkerID, m.DisplayName, strings.Join(m.MissingSites, ", ")})
	}
	if err := writeTable(f, missingSheet, bold, 1, []any{"Worker", "Name", "Missing sites"}, missing); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
