package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktime-bot/internal/calendar"
	"worktime-bot/internal/daterange"
	"worktime-bot/internal/reconcile"
	"worktime-bot/internal/schedule"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func fixedClock() time.Time {
	return at(2024, time.March, 1, 12, 0)
}

// workday logs a single interval of the given length on date.
func workday(date time.Time, hours float64) reconcile.Interval {
	start := date.Add(8 * time.Hour)
	return reconcile.Interval{Start: start, End: start.Add(time.Duration(hours * float64(time.Hour)))}
}

func februaryReport(t *testing.T) *Report {
	t.Helper()
	store := calendar.NewStore(time.UTC)
	store.AddHoliday(calendar.HolidayFact{Date: at(2024, 2, 14, 0, 0), Region: "BB", Description: "Company day"})
	store.AddLeavePeriod("anna", calendar.LeaveVacation, at(2024, 2, 19, 0, 0), at(2024, 2, 20, 0, 0), "Urlaub")
	store.AddHalfDay(calendar.HalfDayFact{Date: at(2024, 2, 20, 0, 0), Value: dec("0.5"), Description: "Karneval"})
	store.AddHalfDay(calendar.HalfDayFact{Date: at(2024, 2, 23, 0, 0), Value: dec("0.5"), Description: "Team event"})

	var attendance []reconcile.Interval
	rng := daterange.MonthOf(at(2024, 2, 1, 0, 0))
	for _, d := range rng.Days() {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		attendance = append(attendance, workday(d, 8.5))
	}

	rep, err := Reconcile(rng, schedule.FullTime(), store.For("BB", "anna"), attendance,
		WithCarryOver(dec("-3")), WithClock(fixedClock))
	require.NoError(t, err)
	return rep
}

func TestReconcile_February(t *testing.T) {
	rep := februaryReport(t)

	assert.Equal(t, "anna", rep.Person)
	assert.Equal(t, "BB", rep.Region)
	assert.Len(t, rep.Days, 29)
	assert.Equal(t, fixedClock(), rep.GeneratedAt)
	assert.NotEqual(t, [16]byte{}, [16]byte(rep.ID))

	// 21 weekdays * 8 = 168, minus holiday 8, two leave days 16, half day 4
	assert.True(t, rep.Overall.Expected.Equal(dec("140")), rep.Overall.Expected.String())
	// 21 weekdays * 8.5
	assert.True(t, rep.Overall.Actual.Equal(dec("178.5")), rep.Overall.Actual.String())
	assert.True(t, rep.Overall.Difference.Equal(dec("38.5")))
	assert.Equal(t, Overtime, rep.Status)
	assert.True(t, rep.Balance.Equal(dec("35.5")))
	assert.Equal(t, Overtime, rep.BalanceStatus())

	require.NotNil(t, rep.Month)
	assert.Equal(t, time.February, rep.Month.Month)
	assert.Equal(t, rep.Overall, rep.Month.Totals)
}

func TestReconcile_Items(t *testing.T) {
	rep := februaryReport(t)

	holidays := rep.ItemsOf(ItemHoliday)
	require.Len(t, holidays, 1)
	assert.True(t, holidays[0].HoursImpact.Equal(dec("8")))

	vacation := rep.ItemsOf(ItemVacation)
	require.Len(t, vacation, 2)
	for _, it := range vacation {
		assert.True(t, it.HoursImpact.Equal(dec("8")))
	}

	half := rep.ItemsOf(ItemHalfDay)
	require.Len(t, half, 1)
	assert.Equal(t, "Team event", half[0].Description)
	assert.True(t, half[0].HoursImpact.Equal(dec("4")))

	skipped := rep.ItemsOf(ItemHalfDaySkipped)
	require.Len(t, skipped, 1)
	assert.True(t, skipped[0].HoursImpact.IsZero())
	assert.Equal(t, at(2024, 2, 20, 0, 0), skipped[0].Date)

	for i := 1; i < len(rep.Items); i++ {
		assert.False(t, rep.Items[i].Date.Before(rep.Items[i-1].Date))
	}
}

func TestAggregate_WeeksSumToOverall(t *testing.T) {
	rep := februaryReport(t)

	sum := decimal.Zero
	days := 0
	for _, w := range rep.Weeks {
		sum = sum.Add(w.Totals.Difference)
		days += w.Days
	}
	assert.True(t, sum.Equal(rep.Overall.Difference))
	assert.Equal(t, 29, days)

	// Feb 2024 starts on Thursday and ends on Thursday
	require.Len(t, rep.Weeks, 5)
	first, last := rep.Weeks[0], rep.Weeks[len(rep.Weeks)-1]
	assert.True(t, first.Partial)
	assert.Equal(t, 4, first.Days)
	assert.Equal(t, 5, first.Week)
	assert.Equal(t, at(2024, 2, 1, 0, 0), first.Start)
	assert.Equal(t, at(2024, 2, 4, 0, 0), first.End)
	assert.True(t, last.Partial)
	assert.Equal(t, 4, last.Days)
	assert.False(t, rep.Weeks[1].Partial)
}

func TestAggregate_CumulativeRecurrence(t *testing.T) {
	rep := februaryReport(t)

	require.Len(t, rep.Cumulative, len(rep.Days))
	assert.True(t, rep.Cumulative[0].Difference.Equal(rep.Days[0].Difference))
	for i := 1; i < len(rep.Days); i++ {
		want := rep.Cumulative[i-1].Difference.Add(rep.Days[i].Difference)
		assert.True(t, rep.Cumulative[i].Difference.Equal(want), "day %d", i)
	}
	assert.True(t, rep.Cumulative[len(rep.Cumulative)-1].Difference.Equal(rep.Overall.Difference))
}

func TestAggregate_SundayWeekStart(t *testing.T) {
	rng := daterange.Range{Start: at(2024, 2, 4, 0, 0), End: at(2024, 2, 17, 0, 0)}
	sched := schedule.FullTime()
	sched.WeekStart = time.Sunday

	rep, err := Reconcile(rng, sched, calendar.NewStore(time.UTC).For("BB", "anna"), nil, WithClock(fixedClock))
	require.NoError(t, err)
	require.Len(t, rep.Weeks, 2)
	assert.Equal(t, 7, rep.Weeks[0].Days)
	assert.Equal(t, time.Sunday, rep.Weeks[0].Start.Weekday())
	assert.Nil(t, rep.Month)
}

func TestTotals_Status(t *testing.T) {
	assert.Equal(t, Undertime, Totals{Expected: decimal.Zero, Actual: decimal.Zero, Difference: decimal.Zero}.Status())
	assert.Equal(t, Undertime, Totals{Expected: dec("8"), Actual: dec("8"), Difference: decimal.Zero}.Status())
	assert.Equal(t, Overtime, Totals{Expected: dec("8"), Actual: dec("9"), Difference: dec("1")}.Status())

	tot := Totals{Expected: dec("8"), Actual: dec("5.5"), Difference: dec("-2.5")}
	assert.Equal(t, Undertime, tot.Status())
	assert.True(t, tot.Remaining().Equal(dec("2.5")))
	assert.True(t, Totals{Expected: dec("8"), Actual: dec("9")}.Remaining().IsZero())
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil, time.Monday)
	assert.Empty(t, agg.Weeks)
	assert.Nil(t, agg.Month)
	assert.True(t, agg.Overall.Expected.IsZero())
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	rep := februaryReport(t)
	before := make([]reconcile.DayRecord, len(rep.Days))
	copy(before, rep.Days)

	Aggregate(rep.Days, time.Monday)
	assert.Equal(t, before, rep.Days)
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "7h 30m", FormatHours(dec("7.5")))
	assert.Equal(t, "-1h 15m", FormatHours(dec("-1.25")))
	assert.Equal(t, "0h 0m", FormatHours(dec("-0.001")))
	assert.Equal(t, "+2h 0m", FormatSigned(dec("2")))
	assert.Equal(t, "-0h 45m", FormatSigned(dec("-0.75")))
}
