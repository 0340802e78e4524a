// Package calendar stores the dated facts that change a day's expected
// hours: regional public holidays, personal leave and configured half days.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Nationwide is the region of holidays that apply everywhere.
const Nationwide = "ALL"

const DateLayout = "2006-01-02"

type LeaveKind string

const (
	LeaveVacation LeaveKind = "vacation"
	LeaveSick     LeaveKind = "sick"
	LeaveSpecial  LeaveKind = "special"
)

func ParseLeaveKind(s string) (LeaveKind, error) {
	switch LeaveKind(strings.ToLower(strings.TrimSpace(s))) {
	case LeaveVacation:
		return LeaveVacation, nil
	case LeaveSick:
		return LeaveSick, nil
	case LeaveSpecial:
		return LeaveSpecial, nil
	}
	return "", fmt.Errorf("unknown leave kind %q", s)
}

// HalfDayMode selects how a half day's value is applied to the base expectation.
type HalfDayMode string

const (
	// HalfDayFraction multiplies the base expectation by Value.
	HalfDayFraction HalfDayMode = "fraction"
	// HalfDayFixed replaces the expectation by Value hours, capped at the base.
	HalfDayFixed HalfDayMode = "fixed"
)

func ParseHalfDayMode(s string) (HalfDayMode, error) {
	switch HalfDayMode(strings.ToLower(strings.TrimSpace(s))) {
	case HalfDayFraction, "":
		return HalfDayFraction, nil
	case HalfDayFixed:
		return HalfDayFixed, nil
	}
	return "", fmt.Errorf("unknown half-day mode %q", s)
}

// DefaultHalfDayFraction is used when a half day has no explicit value.
var DefaultHalfDayFraction = decimal.NewFromFloat(0.5)

type HolidayFact struct {
	Date        time.Time
	Region      string
	Description string
}

type LeaveFact struct {
	Date        time.Time
	Person      string
	Kind        LeaveKind
	Description string
}

type HalfDayFact struct {
	Date        time.Time
	Mode        HalfDayMode
	Value       decimal.Decimal
	Description string
}

// Apply returns the reduced expectation for a day whose base is base.
func (h HalfDayFact) Apply(base decimal.Decimal) decimal.Decimal {
	if h.Mode == HalfDayFixed {
		return decimal.Min(h.Value, base)
	}
	return base.Mul(h.Value)
}

// Skipped records a fact that could not be loaded.
type Skipped struct {
	Kind   string
	Raw    string
	Reason string
}

func (s Skipped) String() string {
	return fmt.Sprintf("%s %q: %s", s.Kind, s.Raw, s.Reason)
}

// Facts is the per-date view the reconciliation engine consumes. Region and
// person filtering has already happened.
type Facts interface {
	Holiday(date time.Time) (HolidayFact, bool)
	Leave(date time.Time) (LeaveFact, bool)
	HalfDay(date time.Time) (HalfDayFact, bool)
}

func dayKey(t time.Time) string {
	return t.Format(DateLayout)
}

func normalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}
