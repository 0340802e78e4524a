// Package daterange turns a report mode (week, month, custom month or an
// explicit start/end pair) into an inclusive pair of calendar dates.
package daterange

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

type Mode string

const (
	ModeWeek        Mode = "week"
	ModeMonth       Mode = "month"
	ModeCustomMonth Mode = "custom-month"
	ModeExplicit    Mode = "start-end"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"

	MinYear = 2000
	MaxYear = 2100
)

var customMonthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// Options mirrors the mutually exclusive report selectors.
type Options struct {
	Week        bool
	Month       bool
	CustomMonth string // YYYY-MM
	Start       string // YYYY-MM-DD, requires End
	End         string // YYYY-MM-DD, requires Start
}

// Range is an inclusive [Start, End] pair of local midnights.
type Range struct {
	Start time.Time
	End   time.Time
	Mode  Mode
}

// Selected returns the modes present in the options, in a fixed order.
func (o Options) Selected() []Mode {
	var modes []Mode
	if o.Week {
		modes = append(modes, ModeWeek)
	}
	if o.Month {
		modes = append(modes, ModeMonth)
	}
	if o.CustomMonth != "" {
		modes = append(modes, ModeCustomMonth)
	}
	if o.Start != "" || o.End != "" {
		modes = append(modes, ModeExplicit)
	}
	return modes
}

// Validate rejects conflicting and malformed options without resolving them.
func (o Options) Validate() error {
	modes := o.Selected()
	if len(modes) > 1 {
		return &ConflictingOptionsError{Modes: modes}
	}
	if o.CustomMonth != "" {
		if _, _, err := ParseMonth(o.CustomMonth); err != nil {
			return err
		}
	}
	if o.Start != "" || o.End != "" {
		if _, _, err := parseExplicit(o.Start, o.End, time.UTC); err != nil {
			return err
		}
	}
	return nil
}

// Resolve validates the options and computes the range relative to anchor.
// The anchor's location is used for every produced date. With no mode set
// the anchor's month is returned.
func Resolve(o Options, anchor time.Time, weekStart time.Weekday) (Range, error) {
	if err := o.Validate(); err != nil {
		return Range{}, err
	}
	loc := anchor.Location()
	day := Midnight(anchor)

	switch {
	case o.Week:
		return WeekOf(day, weekStart), nil
	case o.CustomMonth != "":
		year, month, _ := ParseMonth(o.CustomMonth)
		r := MonthOf(time.Date(year, month, 1, 0, 0, 0, 0, loc))
		r.Mode = ModeCustomMonth
		return r, nil
	case o.Start != "":
		start, end, _ := parseExplicit(o.Start, o.End, loc)
		return Range{Start: start, End: end, Mode: ModeExplicit}, nil
	default:
		return MonthOf(day), nil
	}
}

// WeekOf returns the seven days starting on weekStart that contain day.
func WeekOf(day time.Time, weekStart time.Weekday) Range {
	day = Midnight(day)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	return Range{Start: start, End: start.AddDate(0, 0, 6), Mode: ModeWeek}
}

// MonthOf returns the first to last calendar day of day's month.
func MonthOf(day time.Time) Range {
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	return Range{Start: start, End: start.AddDate(0, 1, -1), Mode: ModeMonth}
}

// ParseMonth parses a strict YYYY-MM value within the supported years.
func ParseMonth(value string) (int, time.Month, error) {
	m := customMonthPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, 0, &InvalidRangeError{Input: value, Reason: "expected format YYYY-MM, e.g. 2024-12"}
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return 0, 0, &InvalidRangeError{Input: value, Reason: "month must be between 01 and 12"}
	}
	if year < MinYear || year > MaxYear {
		return 0, 0, &InvalidRangeError{
			Input:  value,
			Reason: fmt.Sprintf("year must be between %d and %d", MinYear, MaxYear),
		}
	}
	return year, time.Month(month), nil
}

func parseExplicit(startStr, endStr string, loc *time.Location) (time.Time, time.Time, error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, &InvalidRangeError{Reason: "both start and end date must be given"}
	}
	start, err := time.ParseInLocation(DateLayout, startStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, &InvalidRangeError{Input: startStr, Reason: "expected format YYYY-MM-DD"}
	}
	end, err := time.ParseInLocation(DateLayout, endStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, &InvalidRangeError{Input: endStr, Reason: "expected format YYYY-MM-DD"}
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, &InvalidRangeError{
			Input:  startStr + ".." + endStr,
			Reason: "start date cannot be after end date",
		}
	}
	return start, end, nil
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Days returns every date of the range in ascending order.
func (r Range) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Len is the number of days in the range.
func (r Range) Len() int {
	return len(r.Days())
}

func (r Range) Contains(t time.Time) bool {
	d := Midnight(t.In(r.Start.Location()))
	return !d.Before(r.Start) && !d.After(r.End)
}

// MonthAligned reports whether the range is exactly one calendar month.
func (r Range) MonthAligned() bool {
	if r.Start.Day() != 1 {
		return false
	}
	m := MonthOf(r.Start)
	return SameDay(m.End, r.End)
}

// Label is a short identifier used in file names and headings.
func (r Range) Label() string {
	switch {
	case r.MonthAligned():
		return r.Start.Format(MonthLayout)
	case r.Mode == ModeWeek:
		year, week := r.Start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return r.Start.Format(DateLayout) + "_" + r.End.Format(DateLayout)
	}
}

func (r Range) String() string {
	return "[" + r.Start.Format(DateLayout) + ", " + r.End.Format(DateLayout) + "]"
}
