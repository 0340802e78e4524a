package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"worktime-bot/internal/calendar"
	"worktime-bot/internal/daterange"
	"worktime-bot/internal/reconcile"
	"worktime-bot/internal/report"
	"worktime-bot/internal/schedule"
)

func day(d int) time.Time {
	return time.Date(2024, 10, d, 0, 0, 0, 0, time.UTC)
}

func work(d, hours int) reconcile.Interval {
	start := day(d).Add(8 * time.Hour)
	return reconcile.Interval{Start: start, End: start.Add(time.Duration(hours) * time.Hour)}
}

func octoberReport(t *testing.T) *report.Report {
	t.Helper()
	store := calendar.NewStore(time.UTC)
	store.AddRawHoliday("2024-10-03", "ALL", "Tag der Deutschen Einheit")
	store.AddRawHoliday("2024-10-31", "BB", "Reformationstag")
	store.AddLeavePeriod("7", calendar.LeaveVacation, day(14), day(15), "Herbst_ferien")
	store.AddRawHalfDay("2024-10-18", "0.5", calendar.HalfDayFraction, "Team event")

	rng, err := daterange.Resolve(daterange.Options{CustomMonth: "2024-10"}, day(1), time.Monday)
	require.NoError(t, err)

	var attendance []reconcile.Interval
	for _, d := range rng.Days() {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			attendance = append(attendance, work(d.Day(), 8))
		}
	}

	rep, err := report.Reconcile(rng, schedule.FullTime(), store.For("BB", "7"), attendance,
		report.WithCarryOver(decimal.NewFromInt(-2)),
		report.WithClock(func() time.Time { return day(31) }))
	require.NoError(t, err)
	return rep
}

func TestSummary(t *testing.T) {
	rep := octoberReport(t)
	text := Summary(rep)

	assert.Contains(t, text, "October 2024")
	assert.Contains(t, text, "*Status:* Overtime")
	assert.Contains(t, text, "Tag der Deutschen Einheit")
	assert.Contains(t, text, "Reformationstag")
	assert.Contains(t, text, `Herbst\_ferien`, "markdown is escaped")
	assert.Contains(t, text, "half-day Team event (-4h 0m expected)")
	assert.Contains(t, text, "*Carry-over:* -2h 0m")
	assert.Contains(t, text, "partial week")
	assert.NotContains(t, text, "ignored")
}

func TestTitleAndFileName(t *testing.T) {
	rep := octoberReport(t)
	assert.Equal(t, "worktimes-2024-10", FileName(rep))

	rep.Range = daterange.WeekOf(day(16), time.Monday)
	assert.Equal(t, "Week 42/2024", Title(rep))
	assert.Equal(t, "worktimes-2024-W42", FileName(rep))

	rep.Range = daterange.Range{Start: day(2), End: day(9), Mode: daterange.ModeExplicit}
	assert.Equal(t, "02.10.2024 - 09.10.2024", Title(rep))
}

func TestStatus_ListsSkipped(t *testing.T) {
	rep := octoberReport(t)
	rep.Skipped = []calendar.Skipped{{Kind: "holiday", Raw: "2024-13-01", Reason: "unparseable date"}}
	text := Status(rep)
	assert.Contains(t, text, "Overtime")
	assert.Contains(t, text, `ignored holiday "2024-13-01": unparseable date`)
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, octoberReport(t)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestXLSX(t *testing.T) {
	rep := octoberReport(t)
	var buf bytes.Buffer
	require.NoError(t, XLSX(&buf, rep))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetDays, sheetWeeks}, f.GetSheetList())

	title, err := f.GetCellValue(sheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "October 2024", title)

	rows, err := f.GetRows(sheetDays)
	require.NoError(t, err)
	assert.Len(t, rows, 32)
	assert.Equal(t, "2024-10-03", rows[3][0])
	assert.Equal(t, string(reconcile.Holiday), rows[3][2])

	weeks, err := f.GetRows(sheetWeeks)
	require.NoError(t, err)
	assert.Len(t, weeks, len(rep.Weeks)+1)
}
