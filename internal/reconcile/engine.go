// Package reconcile classifies every day of a range and compares expected
// with logged hours.
package reconcile

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"worktime-bot/internal/calendar"
	"worktime-bot/internal/daterange"
	"worktime-bot/internal/schedule"
)

var secondsPerHour = decimal.NewFromInt(3600)

// Interval is one attendance entry. It counts toward the day of its Start.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Hours() decimal.Decimal {
	seconds := int64(i.End.Sub(i.Start) / time.Second)
	return decimal.NewFromInt(seconds).DivRound(secondsPerHour, 4)
}

// DayRecord is the reconciled result for one calendar date.
type DayRecord struct {
	Date              time.Time
	Weekday           time.Weekday
	Classification    Classification
	Rule              string
	BaseExpected      decimal.Decimal
	Expected          decimal.Decimal
	Actual            decimal.Decimal
	Difference        decimal.Decimal
	Holiday           *calendar.HolidayFact
	Leave             *calendar.LeaveFact
	HalfDay           *calendar.HalfDayFact
	HalfDaySuppressed bool
	Intervals         int
}

type Result struct {
	Days    []DayRecord
	Skipped []calendar.Skipped
}

type Engine struct {
	rules  []Rule
	loc    *time.Location
	logger logrus.FieldLogger
}

type Option func(*Engine)

func WithRules(rules []Rule) Option {
	return func(e *Engine) { e.rules = rules }
}

// WithLocation sets the zone used to assign intervals to calendar days.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{rules: DefaultRules(), logger: discard}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run reconciles every day of rng. Facts are looked up through the given
// view, so region and person filtering is the caller's concern.
func (e *Engine) Run(rng daterange.Range, sched schedule.Schedule, facts calendar.Facts, intervals []Interval) (Result, error) {
	if rng.End.Before(rng.Start) {
		return Result{}, &daterange.InvalidRangeError{Input: rng.String(), Reason: "start date cannot be after end date"}
	}
	if len(e.rules) == 0 {
		return Result{}, fmt.Errorf("reconcile: empty rule list")
	}
	loc := e.loc
	if loc == nil {
		loc = rng.Start.Location()
	}

	var result Result
	actual, count := e.bucket(rng, loc, intervals, &result)

	for _, date := range rng.Days() {
		key := date.Format(daterange.DateLayout)
		rec := e.classify(date, sched, facts)
		rec.Actual = decimal.Zero
		if a, ok := actual[key]; ok {
			rec.Actual = a
		}
		rec.Intervals = count[key]
		rec.Difference = rec.Actual.Sub(rec.Expected)
		result.Days = append(result.Days, rec)
	}
	return result, nil
}

func (e *Engine) classify(date time.Time, sched schedule.Schedule, facts calendar.Facts) DayRecord {
	f := DayFacts{BaseExpected: sched.ExpectedHours(date)}
	if facts != nil {
		if h, ok := facts.Holiday(date); ok {
			f.Holiday = &h
		}
		if l, ok := facts.Leave(date); ok {
			f.Leave = &l
		}
		if hd, ok := facts.HalfDay(date); ok {
			f.HalfDay = &hd
		}
	}

	rec := DayRecord{
		Date:         date,
		Weekday:      date.Weekday(),
		BaseExpected: f.BaseExpected,
		Holiday:      f.Holiday,
		Leave:        f.Leave,
		HalfDay:      f.HalfDay,
	}
	for _, r := range e.rules {
		if !r.Match(f) {
			continue
		}
		rec.Rule = r.Name
		rec.Classification = r.Classify(f)
		rec.Expected = r.Expected(f)
		break
	}
	if rec.Rule == "" {
		rec.Classification = Working
		rec.Expected = f.BaseExpected
	}
	if f.HalfDay != nil && rec.Classification != HalfDay {
		rec.HalfDaySuppressed = true
		e.logger.WithFields(logrus.Fields{
			"date":           date.Format(daterange.DateLayout),
			"classification": rec.Classification,
		}).Debug("half day suppressed")
	}
	return rec
}

// bucket sums interval hours per local start date inside rng.
func (e *Engine) bucket(rng daterange.Range, loc *time.Location, intervals []Interval, result *Result) (map[string]decimal.Decimal, map[string]int) {
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	actual := make(map[string]decimal.Decimal)
	count := make(map[string]int)
	for _, iv := range sorted {
		if !iv.End.After(iv.Start) {
			raw := iv.Start.Format(time.RFC3339) + ".." + iv.End.Format(time.RFC3339)
			result.Skipped = append(result.Skipped, calendar.Skipped{
				Kind:   "attendance",
				Raw:    raw,
				Reason: "end is not after start",
			})
			e.logger.WithField("interval", raw).Debug("skipping invalid attendance interval")
			continue
		}
		start := iv.Start.In(loc)
		if !rng.Contains(start) {
			continue
		}
		key := start.Format(daterange.DateLayout)
		prev, ok := actual[key]
		if !ok {
			prev = decimal.Zero
		}
		actual[key] = prev.Add(iv.Hours())
		count[key]++
	}
	return actual, count
}
