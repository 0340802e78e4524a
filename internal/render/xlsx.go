package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"worktime-bot/internal/report"
)

const (
	sheetSummary = "Summary"
	sheetDays    = "Days"
	sheetWeeks   = "Weeks"
)

// XLSX writes a workbook with a summary, one row per day and one per week.
// Hour columns hold numbers so the sheet can be recalculated.
func XLSX(w io.Writer, r *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetDays); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetWeeks); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	hours, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return err
	}

	summary := [][]any{
		{"Work times", Title(r)},
		{"From", r.Range.Start.Format(dateLayout)},
		{"To", r.Range.End.Format(dateLayout)},
		{"Schedule", r.Schedule.Name},
		{"Region", r.Region},
		{"Expected hours", float(r.Overall.Expected)},
		{"Worked hours", float(r.Overall.Actual)},
		{"Difference", float(r.Overall.Difference)},
		{"Status", StatusLabel(r.Overall.Status())},
		{"Carry-over", float(r.CarryOver)},
		{"Balance", float(r.Balance)},
		{"Report", r.ID.String()},
	}
	if err := writeRows(f, sheetSummary, 1, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetSummary, "A1", "B1", header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetSummary, "B6", "B11", hours); err != nil {
		return err
	}
	_ = f.SetColWidth(sheetSummary, "A", "A", 18)
	_ = f.SetColWidth(sheetSummary, "B", "B", 38)

	days := [][]any{{"Date", "Weekday", "Classification", "Base", "Expected", "Worked", "Difference", "Note"}}
	for _, d := range r.Days {
		note := ""
		switch {
		case d.Leave != nil:
			note = string(d.Leave.Kind) + " " + d.Leave.Description
		case d.Holiday != nil:
			note = d.Holiday.Description
		case d.HalfDay != nil:
			note = "half day " + d.HalfDay.Description
		}
		days = append(days, []any{
			d.Date.Format("2006-01-02"),
			d.Weekday.String(),
			string(d.Classification),
			float(d.BaseExpected),
			float(d.Expected),
			float(d.Actual),
			float(d.Difference),
			note,
		})
	}
	if err := writeRows(f, sheetDays, 1, days); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetDays, "A1", "H1", header); err != nil {
		return err
	}
	if len(r.Days) > 0 {
		last := fmt.Sprintf("G%d", len(r.Days)+1)
		if err := f.SetCellStyle(sheetDays, "D2", last, hours); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(sheetDays, "A", "C", 14)
	_ = f.SetColWidth(sheetDays, "H", "H", 32)

	weeks := [][]any{{"Year", "Week", "From", "To", "Days", "Partial", "Expected", "Worked", "Difference"}}
	for _, w := range r.Weeks {
		weeks = append(weeks, []any{
			w.Year, w.Week,
			w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"),
			w.Days, w.Partial,
			float(w.Totals.Expected), float(w.Totals.Actual), float(w.Totals.Difference),
		})
	}
	if err := writeRows(f, sheetWeeks, 1, weeks); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetWeeks, "A1", "I1", header); err != nil {
		return err
	}

	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, startRow int, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, startRow+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, startRow+i, err)
		}
	}
	return nil
}
