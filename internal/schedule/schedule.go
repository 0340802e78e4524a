// Package schedule models how many hours an employee is expected to work on
// each weekday.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindFullTime Kind = "full_time"
	KindPartTime Kind = "part_time"
	KindCustom   Kind = "custom"
)

var (
	ErrUnknownSchedule = errors.New("unknown schedule")
	ErrInvalidHours    = errors.New("invalid schedule hours")
)

// MaxDailyHours caps a single weekday entry.
var MaxDailyHours = decimal.NewFromInt(24)

// UnknownScheduleError is returned by Registry.Lookup for an identity
// without a configured schedule.
type UnknownScheduleError struct {
	Identity string
}

func (e *UnknownScheduleError) Error() string {
	return fmt.Sprintf("no work schedule configured for %q", e.Identity)
}

func (e *UnknownScheduleError) Unwrap() error {
	return ErrUnknownSchedule
}

// Schedule maps each weekday to expected hours. Weekdays that were never set
// expect zero hours.
type Schedule struct {
	Name      string
	Kind      Kind
	Hours     [7]decimal.Decimal // indexed by time.Weekday
	WeekStart time.Weekday
}

// ExpectedHours returns the base expectation for date, ignoring holidays,
// leave and half days.
func (s Schedule) ExpectedHours(date time.Time) decimal.Decimal {
	return s.Hours[date.Weekday()]
}

func (s Schedule) WeeklyHours() decimal.Decimal {
	total := decimal.Zero
	for _, h := range s.Hours {
		total = total.Add(h)
	}
	return total
}

// WorkingDays lists weekdays with a positive expectation, ordered from WeekStart.
func (s Schedule) WorkingDays() []time.Weekday {
	var days []time.Weekday
	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(s.WeekStart) + i) % 7)
		if s.Hours[wd].IsPositive() {
			days = append(days, wd)
		}
	}
	return days
}

// Validate checks every entry is within 0..24 hours.
func (s Schedule) Validate() error {
	for wd, h := range s.Hours {
		if h.IsNegative() || h.GreaterThan(MaxDailyHours) {
			return fmt.Errorf("%w: %s has %s hours", ErrInvalidHours, time.Weekday(wd), h.String())
		}
	}
	return nil
}

// String renders the schedule as "Mon=8,Tue=8,...", the same format ParseHours accepts.
func (s Schedule) String() string {
	var parts []string
	for _, wd := range s.WorkingDays() {
		parts = append(parts, fmt.Sprintf("%s=%s", shortName(wd), s.Hours[wd].String()))
	}
	if len(parts) == 0 {
		return "no working days"
	}
	return strings.Join(parts, ",")
}

func weekdays(hours decimal.Decimal, days ...time.Weekday) [7]decimal.Decimal {
	var out [7]decimal.Decimal
	for i := range out {
		out[i] = decimal.Zero
	}
	for _, d := range days {
		out[d] = hours
	}
	return out
}

var workWeek = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// FullTime is 8 hours Monday to Friday.
func FullTime() Schedule {
	return Schedule{
		Name:      "Full-time",
		Kind:      KindFullTime,
		Hours:     weekdays(decimal.NewFromInt(8), workWeek...),
		WeekStart: time.Monday,
	}
}

// PartTime is 4 hours Monday to Friday.
func PartTime() Schedule {
	return Schedule{
		Name:      "Part-time",
		Kind:      KindPartTime,
		Hours:     weekdays(decimal.NewFromInt(4), workWeek...),
		WeekStart: time.Monday,
	}
}

// Custom builds a schedule from explicit per-weekday hours.
func Custom(name string, hours map[time.Weekday]decimal.Decimal) (Schedule, error) {
	s := Schedule{Name: name, Kind: KindCustom, Hours: weekdays(decimal.Zero), WeekStart: time.Monday}
	for wd, h := range hours {
		s.Hours[wd] = h
	}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// Distribute splits a weekly total evenly across days.
func Distribute(name string, weekly decimal.Decimal, days ...time.Weekday) (Schedule, error) {
	if len(days) == 0 {
		return Schedule{}, fmt.Errorf("%w: no working days selected", ErrInvalidHours)
	}
	if !weekly.IsPositive() {
		return Schedule{}, fmt.Errorf("%w: weekly total must be positive", ErrInvalidHours)
	}
	unique := map[time.Weekday]bool{}
	last := days[0]
	for _, d := range days {
		unique[d] = true
		if mondayFirst(d) >= mondayFirst(last) {
			last = d
		}
	}
	// per day is rounded; the latest day in the week takes the remainder
	perDay := weekly.DivRound(decimal.NewFromInt(int64(len(unique))), 4)
	hours := make(map[time.Weekday]decimal.Decimal, len(unique))
	for d := range unique {
		hours[d] = perDay
	}
	hours[last] = weekly.Sub(perDay.Mul(decimal.NewFromInt(int64(len(unique) - 1))))
	return Custom(name, hours)
}

func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday accepts English short or long names, case-insensitive.
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidHours, s)
	}
	return wd, nil
}

// ParseDays parses a comma separated weekday list such as "Mon,Wed,Fri".
func ParseDays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		wd, err := ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		days = append(days, wd)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, nil
}

// ParseHours parses "Mon=8,Tue=7.5,Fri=6" into a custom schedule.
func ParseHours(name, s string) (Schedule, error) {
	hours := map[time.Weekday]decimal.Decimal{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, value, ok := strings.Cut(part, "=")
		if !ok {
			return Schedule{}, fmt.Errorf("%w: expected Day=hours, got %q", ErrInvalidHours, part)
		}
		wd, err := ParseWeekday(day)
		if err != nil {
			return Schedule{}, err
		}
		h, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return Schedule{}, fmt.Errorf("%w: %q is not a number", ErrInvalidHours, value)
		}
		hours[wd] = h
	}
	if len(hours) == 0 {
		return Schedule{}, fmt.Errorf("%w: empty schedule", ErrInvalidHours)
	}
	return Custom(name, hours)
}

func shortName(wd time.Weekday) string {
	return wd.String()[:3]
}

// Registry resolves the schedule configured for an identity.
type Registry struct {
	schedules map[string]Schedule
}

func NewRegistry() *Registry {
	return &Registry{schedules: make(map[string]Schedule)}
}

func (r *Registry) Set(identity string, s Schedule) {
	r.schedules[identity] = s
}

func (r *Registry) Lookup(identity string) (Schedule, error) {
	s, ok := r.schedules[identity]
	if !ok {
		return Schedule{}, &UnknownScheduleError{Identity: identity}
	}
	return s, nil
}
