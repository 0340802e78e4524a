// Package report aggregates reconciled days and assembles the final report
// every renderer consumes.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"worktime-bot/internal/calendar"
	"worktime-bot/internal/daterange"
	"worktime-bot/internal/reconcile"
	"worktime-bot/internal/schedule"
)

type ItemKind string

const (
	ItemHoliday        ItemKind = "holiday"
	ItemVacation       ItemKind = "vacation"
	ItemSick           ItemKind = "sick"
	ItemSpecial        ItemKind = "special"
	ItemHalfDay        ItemKind = "half-day"
	ItemHalfDaySkipped ItemKind = "half-day-skipped"
)

// Item is one calendar fact that touched the range.
type Item struct {
	Date        time.Time
	Kind        ItemKind
	Description string
	HoursImpact decimal.Decimal
}

type Report struct {
	ID          uuid.UUID
	Person      string
	Region      string
	Schedule    schedule.Schedule
	Range       daterange.Range
	Days        []reconcile.DayRecord
	Weeks       []WeekSummary
	Month       *MonthSummary
	Overall     Totals
	Cumulative  []CumulativePoint
	Items       []Item
	Skipped     []calendar.Skipped
	CarryOver   decimal.Decimal
	Balance     decimal.Decimal
	Status      Status
	GeneratedAt time.Time
}

// ItemsOf returns the items of the given kinds, in date order.
func (r *Report) ItemsOf(kinds ...ItemKind) []Item {
	var out []Item
	for _, it := range r.Items {
		for _, k := range kinds {
			if it.Kind == k {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// BalanceStatus is the status of the balance including carry-over.
func (r *Report) BalanceStatus() Status {
	if r.Balance.IsPositive() {
		return Overtime
	}
	return Undertime
}

type settings struct {
	person    string
	region    string
	carryOver decimal.Decimal
	clock     func() time.Time
	engine    *reconcile.Engine
}

type Option func(*settings)

func WithPerson(person string) Option {
	return func(s *settings) { s.person = person }
}

func WithRegion(region string) Option {
	return func(s *settings) { s.region = region }
}

// WithCarryOver adds a previous balance (positive overtime, negative undertime).
func WithCarryOver(hours decimal.Decimal) Option {
	return func(s *settings) { s.carryOver = hours }
}

func WithClock(clock func() time.Time) Option {
	return func(s *settings) { s.clock = clock }
}

func WithEngine(e *reconcile.Engine) Option {
	return func(s *settings) { s.engine = e }
}

// Reconcile runs the engine over rng and assembles the report.
func Reconcile(rng daterange.Range, sched schedule.Schedule, facts calendar.Facts, attendance []reconcile.Interval, opts ...Option) (*Report, error) {
	s := settings{carryOver: decimal.Zero, clock: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	if s.engine == nil {
		s.engine = reconcile.NewEngine()
	}
	if v, ok := facts.(*calendar.View); ok {
		if s.person == "" {
			s.person = v.Person()
		}
		if s.region == "" {
			s.region = v.Region()
		}
	}

	res, err := s.engine.Run(rng, sched, facts, attendance)
	if err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", rng, err)
	}

	var skipped []calendar.Skipped
	if v, ok := facts.(interface{ Skipped() []calendar.Skipped }); ok {
		skipped = append(skipped, v.Skipped()...)
	}
	skipped = append(skipped, res.Skipped...)

	return Assemble(rng, sched, res.Days, skipped, s.person, s.region, s.carryOver, s.clock()), nil
}

// Assemble builds a report from already reconciled days.
func Assemble(rng daterange.Range, sched schedule.Schedule, days []reconcile.DayRecord, skipped []calendar.Skipped,
	person, region string, carryOver decimal.Decimal, now time.Time) *Report {
	agg := Aggregate(days, sched.WeekStart)
	r := &Report{
		ID:          uuid.New(),
		Person:      person,
		Region:      region,
		Schedule:    sched,
		Range:       rng,
		Days:        days,
		Weeks:       agg.Weeks,
		Month:       agg.Month,
		Overall:     agg.Overall,
		Cumulative:  agg.Cumulative,
		Items:       itemize(days),
		Skipped:     skipped,
		CarryOver:   carryOver,
		Balance:     carryOver.Add(agg.Overall.Difference),
		Status:      agg.Overall.Status(),
		GeneratedAt: now,
	}
	return r
}

func itemize(days []reconcile.DayRecord) []Item {
	var items []Item
	for _, d := range days {
		impact := d.BaseExpected.Sub(d.Expected)
		switch d.Classification {
		case reconcile.Leave:
			items = append(items, Item{Date: d.Date, Kind: leaveItem(d.Leave.Kind), Description: d.Leave.Description, HoursImpact: impact})
		case reconcile.Holiday:
			items = append(items, Item{Date: d.Date, Kind: ItemHoliday, Description: d.Holiday.Description, HoursImpact: impact})
		case reconcile.HalfDay:
			items = append(items, Item{Date: d.Date, Kind: ItemHalfDay, Description: d.HalfDay.Description, HoursImpact: impact})
		}
		// a holiday shadowed by leave is still listed, without impact
		if d.Classification == reconcile.Leave && d.Holiday != nil {
			items = append(items, Item{Date: d.Date, Kind: ItemHoliday, Description: d.Holiday.Description, HoursImpact: decimal.Zero})
		}
		if d.HalfDaySuppressed {
			items = append(items, Item{Date: d.Date, Kind: ItemHalfDaySkipped, Description: d.HalfDay.Description, HoursImpact: decimal.Zero})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })
	return items
}

func leaveItem(k calendar.LeaveKind) ItemKind {
	switch k {
	case calendar.LeaveSick:
		return ItemSick
	case calendar.LeaveSpecial:
		return ItemSpecial
	default:
		return ItemVacation
	}
}
