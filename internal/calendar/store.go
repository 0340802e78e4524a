package calendar

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type holidayKey struct {
	day    string
	region string
}

type leaveKey struct {
	day    string
	person string
}

// Store holds calendar facts for any number of regions and people. It is
// built per request and is not safe for concurrent writes.
type Store struct {
	loc      *time.Location
	holidays map[holidayKey]HolidayFact
	leaves   map[leaveKey]LeaveFact
	halfDays map[string]HalfDayFact
	skipped  []Skipped
}

// NewStore creates an empty store; string dates are parsed in loc.
func NewStore(loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		loc:      loc,
		holidays: make(map[holidayKey]HolidayFact),
		leaves:   make(map[leaveKey]LeaveFact),
		halfDays: make(map[string]HalfDayFact),
	}
}

func (s *Store) Location() *time.Location {
	return s.loc
}

func (s *Store) skip(kind, raw, reason string) {
	s.skipped = append(s.skipped, Skipped{Kind: kind, Raw: raw, Reason: reason})
}

// Skipped returns the facts rejected so far.
func (s *Store) Skipped() []Skipped {
	out := make([]Skipped, len(s.skipped))
	copy(out, s.skipped)
	return out
}

func (s *Store) AddHoliday(h HolidayFact) bool {
	region := normalizeRegion(h.Region)
	if region == "" {
		s.skip("holiday", dayKey(h.Date)+" "+h.Description, "empty region")
		return false
	}
	if h.Date.IsZero() {
		s.skip("holiday", h.Description, "missing date")
		return false
	}
	h.Region = region
	key := holidayKey{day: dayKey(h.Date), region: region}
	if _, exists := s.holidays[key]; exists {
		// the same holiday usually appears once per feed year; keep the first
		return false
	}
	s.holidays[key] = h
	return true
}

// AddRawHoliday parses date as YYYY-MM-DD in the store's location.
func (s *Store) AddRawHoliday(date, region, description string) bool {
	t, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		s.skip("holiday", date, "unparseable date")
		return false
	}
	return s.AddHoliday(HolidayFact{Date: t, Region: region, Description: description})
}

func (s *Store) AddLeave(l LeaveFact) bool {
	raw := dayKey(l.Date) + " " + l.Person
	if l.Date.IsZero() {
		s.skip("leave", l.Person, "missing date")
		return false
	}
	switch l.Kind {
	case LeaveVacation, LeaveSick, LeaveSpecial:
	default:
		s.skip("leave", raw, fmt.Sprintf("unknown kind %q", l.Kind))
		return false
	}
	key := leaveKey{day: dayKey(l.Date), person: l.Person}
	if existing, exists := s.leaves[key]; exists {
		s.skip("leave", raw, fmt.Sprintf("conflicts with %s leave on the same day", existing.Kind))
		return false
	}
	s.leaves[key] = l
	return true
}

// AddLeavePeriod adds one leave fact per day of the inclusive range and
// returns how many were stored.
func (s *Store) AddLeavePeriod(person string, kind LeaveKind, start, end time.Time, description string) int {
	if end.Before(start) {
		s.skip("leave", dayKey(start)+".."+dayKey(end)+" "+person, "end before start")
		return 0
	}
	added := 0
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if s.AddLeave(LeaveFact{Date: d, Person: person, Kind: kind, Description: description}) {
			added++
		}
	}
	return added
}

func (s *Store) AddHalfDay(h HalfDayFact) bool {
	raw := dayKey(h.Date) + " " + h.Value.String()
	if h.Date.IsZero() {
		s.skip("half-day", h.Description, "missing date")
		return false
	}
	if h.Mode == "" {
		h.Mode = HalfDayFraction
	}
	if h.Mode != HalfDayFraction && h.Mode != HalfDayFixed {
		s.skip("half-day", raw, fmt.Sprintf("unknown mode %q", h.Mode))
		return false
	}
	if !h.Value.IsPositive() {
		s.skip("half-day", raw, "value must be positive")
		return false
	}
	if h.Mode == HalfDayFraction && h.Value.GreaterThan(decimal.NewFromInt(1)) {
		s.skip("half-day", raw, "fraction must not exceed 1")
		return false
	}
	s.halfDays[dayKey(h.Date)] = h
	return true
}

// AddRawHalfDay parses date and value. An empty value means half of the
// base expectation whatever the mode.
func (s *Store) AddRawHalfDay(date, value string, mode HalfDayMode, description string) bool {
	t, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		s.skip("half-day", date, "unparseable date")
		return false
	}
	v := DefaultHalfDayFraction
	if value == "" {
		mode = HalfDayFraction
	} else {
		v, err = decimal.NewFromString(value)
		if err != nil {
			s.skip("half-day", date+" "+value, "unparseable value")
			return false
		}
	}
	return s.AddHalfDay(HalfDayFact{Date: t, Mode: mode, Value: v, Description: description})
}

// HolidayFor returns the holiday for the exact region or a nationwide one.
func (s *Store) HolidayFor(date time.Time, region string) (HolidayFact, bool) {
	day := dayKey(date)
	if h, ok := s.holidays[holidayKey{day: day, region: normalizeRegion(region)}]; ok {
		return h, true
	}
	h, ok := s.holidays[holidayKey{day: day, region: Nationwide}]
	return h, ok
}

func (s *Store) LeaveFor(date time.Time, person string) (LeaveFact, bool) {
	l, ok := s.leaves[leaveKey{day: dayKey(date), person: person}]
	return l, ok
}

func (s *Store) HalfDayFor(date time.Time) (HalfDayFact, bool) {
	h, ok := s.halfDays[dayKey(date)]
	return h, ok
}

// Holidays returns every stored holiday, in no particular order.
func (s *Store) Holidays() []HolidayFact {
	out := make([]HolidayFact, 0, len(s.holidays))
	for _, h := range s.holidays {
		out = append(out, h)
	}
	return out
}

// For returns a view bound to one region and one person.
func (s *Store) For(region, person string) *View {
	return &View{store: s, region: normalizeRegion(region), person: person}
}

// View is the Facts implementation handed to the engine.
type View struct {
	store  *Store
	region string
	person string
}

func (v *View) Region() string { return v.region }
func (v *View) Person() string { return v.person }

func (v *View) Holiday(date time.Time) (HolidayFact, bool) {
	return v.store.HolidayFor(date, v.region)
}

func (v *View) Leave(date time.Time) (LeaveFact, bool) {
	return v.store.LeaveFor(date, v.person)
}

func (v *View) HalfDay(date time.Time) (HalfDayFact, bool) {
	return v.store.HalfDayFor(date)
}

func (v *View) Skipped() []Skipped {
	return v.store.Skipped()
}
