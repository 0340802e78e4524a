package report

import (
	"time"

	"github.com/shopspring/decimal"

	"worktime-bot/internal/daterange"
	"worktime-bot/internal/reconcile"
)

type Status string

const (
	Overtime  Status = "overtime"
	Undertime Status = "undertime"
)

// epsilon is the tolerance under which totals count as zero.
var epsilon = decimal.NewFromFloat(0.01)

type Totals struct {
	Expected   decimal.Decimal
	Actual     decimal.Decimal
	Difference decimal.Decimal
}

func newTotals() Totals {
	return Totals{Expected: decimal.Zero, Actual: decimal.Zero, Difference: decimal.Zero}
}

func (t *Totals) add(rec reconcile.DayRecord) {
	t.Expected = t.Expected.Add(rec.Expected)
	t.Actual = t.Actual.Add(rec.Actual)
	t.Difference = t.Difference.Add(rec.Difference)
}

// Status is overtime when actual exceeds expected. Nothing expected and
// nothing logged counts as undertime.
func (t Totals) Status() Status {
	if t.Expected.Abs().LessThan(epsilon) && t.Actual.Abs().LessThan(epsilon) {
		return Undertime
	}
	if t.Difference.IsPositive() {
		return Overtime
	}
	return Undertime
}

// Remaining hours still to work, never negative.
func (t Totals) Remaining() decimal.Decimal {
	r := t.Expected.Sub(t.Actual)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

type WeekSummary struct {
	Year    int
	Week    int
	Start   time.Time
	End     time.Time
	Days    int
	Partial bool
	Totals  Totals
}

type MonthSummary struct {
	Year   int
	Month  time.Month
	Totals Totals
}

type CumulativePoint struct {
	Date       time.Time
	Expected   decimal.Decimal
	Actual     decimal.Decimal
	Difference decimal.Decimal
}

type Aggregates struct {
	Weeks      []WeekSummary
	Month      *MonthSummary
	Overall    Totals
	Cumulative []CumulativePoint
}

// Aggregate builds week, month, overall and running totals from day
// records in ascending date order. The input is not modified.
func Aggregate(days []reconcile.DayRecord, weekStart time.Weekday) Aggregates {
	agg := Aggregates{Overall: newTotals()}
	if len(days) == 0 {
		return agg
	}

	var cur *WeekSummary
	var curKey time.Time
	running := newTotals()
	for _, rec := range days {
		ws := daterange.WeekOf(rec.Date, weekStart).Start
		if cur == nil || !daterange.SameDay(curKey, ws) {
			if cur != nil {
				agg.Weeks = append(agg.Weeks, *cur)
			}
			// mid-week day keeps the ISO number stable for non-Monday week starts
			year, week := ws.AddDate(0, 0, 3).ISOWeek()
			curKey = ws
			cur = &WeekSummary{Year: year, Week: week, Start: rec.Date, Totals: newTotals()}
		}
		cur.End = rec.Date
		cur.Days++
		cur.Totals.add(rec)

		agg.Overall.add(rec)
		running.add(rec)
		agg.Cumulative = append(agg.Cumulative, CumulativePoint{
			Date:       rec.Date,
			Expected:   running.Expected,
			Actual:     running.Actual,
			Difference: running.Difference,
		})
	}
	agg.Weeks = append(agg.Weeks, *cur)
	for i := range agg.Weeks {
		agg.Weeks[i].Partial = agg.Weeks[i].Days < 7
	}

	rng := daterange.Range{Start: days[0].Date, End: days[len(days)-1].Date}
	if rng.MonthAligned() {
		agg.Month = &MonthSummary{Year: rng.Start.Year(), Month: rng.Start.Month(), Totals: agg.Overall}
	}
	return agg
}
