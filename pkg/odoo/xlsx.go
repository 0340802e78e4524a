package odoo

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Column labels of the German export.
const (
	ColCheckIn     = "Einchecken"
	ColCheckOut    = "Auschecken"
	ColWorkedHours = "Arbeitsstunden"
	ColLeaveType   = "Abwesenheitstyp"
	ColDescription = "Beschreibung"
	ColStart       = "Startdatum"
	ColEnd         = "Enddatum"
	ColStatus      = "Status"

	StatusRefused = "Abgelehnt"
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2006-01-02",
	"02.01.2006",
	"01-02-06 15:04",
}

type Attendance struct {
	CheckIn  time.Time
	CheckOut time.Time
	// Open is set when the export had no check-out and now was used.
	Open bool
}

type Leave struct {
	Type        string
	Description string
	Start       time.Time
	End         time.Time
	Status      string
}

func (l Leave) Refused() bool {
	return strings.EqualFold(strings.TrimSpace(l.Status), StatusRefused)
}

// ParseError locates a cell that could not be read.
type ParseError struct {
	Row    int
	Column string
	Value  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse %s value %q", e.Row, e.Column, e.Value)
}

func readRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSpreadsheet, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("odoo: read sheet: %w", err)
	}
	return rows, nil
}

func headerIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("odoo: export is missing column %q", col)
		}
	}
	return idx, nil
}

func cell(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseAttendance reads an hr.attendance export. Rows without a check-out
// are closed at now. Rows with an unreadable check-in are returned as errors
// and do not abort parsing.
func ParseAttendance(r io.Reader, loc *time.Location, now time.Time) ([]Attendance, []error, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	idx, err := headerIndex(rows[0], ColCheckIn, ColCheckOut)
	if err != nil {
		return nil, nil, err
	}

	var out []Attendance
	var bad []error
	for i, row := range rows[1:] {
		rowNum := i + 2
		in := cell(row, idx, ColCheckIn)
		if in == "" {
			continue
		}
		checkIn, err := ParseTime(in, loc)
		if err != nil {
			bad = append(bad, &ParseError{Row: rowNum, Column: ColCheckIn, Value: in})
			continue
		}
		a := Attendance{CheckIn: checkIn}
		if raw := cell(row, idx, ColCheckOut); raw != "" {
			checkOut, err := ParseTime(raw, loc)
			if err != nil {
				bad = append(bad, &ParseError{Row: rowNum, Column: ColCheckOut, Value: raw})
				continue
			}
			a.CheckOut = checkOut
		} else {
			a.CheckOut = now.In(loc)
			a.Open = true
		}
		out = append(out, a)
	}
	return out, bad, nil
}

// ParseLeaves reads an hr.leave export. Refused leaves are dropped.
func ParseLeaves(r io.Reader, loc *time.Location) ([]Leave, []error, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	idx, err := headerIndex(rows[0], ColLeaveType, ColStart, ColEnd)
	if err != nil {
		return nil, nil, err
	}

	var out []Leave
	var bad []error
	for i, row := range rows[1:] {
		rowNum := i + 2
		l := Leave{
			Type:        cell(row, idx, ColLeaveType),
			Description: cell(row, idx, ColDescription),
			Status:      cell(row, idx, ColStatus),
		}
		if l.Type == "" || l.Refused() {
			continue
		}
		start, err := ParseTime(cell(row, idx, ColStart), loc)
		if err != nil {
			bad = append(bad, &ParseError{Row: rowNum, Column: ColStart, Value: cell(row, idx, ColStart)})
			continue
		}
		end, err := ParseTime(cell(row, idx, ColEnd), loc)
		if err != nil {
			bad = append(bad, &ParseError{Row: rowNum, Column: ColEnd, Value: cell(row, idx, ColEnd)})
			continue
		}
		l.Start, l.End = start, end
		out = append(out, l)
	}
	return out, bad, nil
}

// ParseTime accepts an Excel serial date or one of the textual layouts and
// returns the wall clock time in loc.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		t = t.Round(time.Second)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown time format %q", value)
}
