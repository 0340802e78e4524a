package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"worktime-bot/internal/daterange"
	"worktime-bot/internal/schedule"
	"worktime-bot/pkg/odoo"
)

const feed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:test
BEGIN:VEVENT
UID:1
DTSTART;VALUE=DATE:20240214
SUMMARY:Test Day
LOCATION:Brandenburg
END:VEVENT
BEGIN:VEVENT
UID:2
DTSTART;VALUE=DATE:20240215
SUMMARY:Somewhere Else
LOCATION:Bayern
END:VEVENT
END:VCALENDAR
`

func writeSheet(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func fixtureOptions(t *testing.T) options {
	t.Helper()
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("DEFAULT_REGION", "BB")
	t.Setenv("HOLIDAYS_ICS_URL", "")
	t.Setenv("ODOO_BASE_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	dir := t.TempDir()
	att := filepath.Join(dir, "attendance.xlsx")
	writeSheet(t, att, [][]any{
		{odoo.ColCheckIn, odoo.ColCheckOut, odoo.ColWorkedHours},
		{"2024-02-12 08:00:00", "2024-02-12 16:30:00", 8.5},
		{"2024-02-13 09:00:00", "2024-02-13 17:00:00", 8},
		{"2024-02-15 08:00:00", "2024-02-15 15:00:00", 7},
	})
	leave := filepath.Join(dir, "leave.xlsx")
	writeSheet(t, leave, [][]any{
		{odoo.ColLeaveType, odoo.ColDescription, odoo.ColStart, odoo.ColEnd, odoo.ColStatus},
		{"Urlaub", "Ski", "2024-02-16", "2024-02-16", "Genehmigt"},
	})
	ics := filepath.Join(dir, "holidays.ics")
	require.NoError(t, os.WriteFile(ics, []byte(feed), 0o644))

	return options{
		attendanceFile: att,
		leaveFile:      leave,
		holidays:       ics,
		calendarFile:   filepath.Join(dir, "missing.yaml"),
		schedule:       "full_time",
		out:            filepath.Join(dir, "out"),
		now:            time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}
}

func TestRun_CustomMonth(t *testing.T) {
	opts := fixtureOptions(t)
	opts.custom = "2024-02"
	opts.previousOvertime = 2.5
	opts.xlsx = true

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "February 2024: Undertime")
	assert.Contains(t, out, "balance")
	assert.Contains(t, out, "expected 152h 0m, worked 23h 30m")

	for _, name := range []string{"worktimes-2024-02.pdf", "worktimes-2024-02.xlsx"} {
		info, err := os.Stat(filepath.Join(opts.out, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}
}

func TestRun_Week(t *testing.T) {
	opts := fixtureOptions(t)
	opts.week = true
	opts.now = time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC)

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &stdout))
	assert.Contains(t, stdout.String(), "Week 7/2024")
	// 14th is a holiday and the 16th vacation: three working days
	assert.Contains(t, stdout.String(), "expected 24h 0m, worked 23h 30m")

	_, err := os.Stat(filepath.Join(opts.out, "worktimes-2024-W07.pdf"))
	assert.NoError(t, err)
}

const yearlyFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:test
BEGIN:VEVENT
UID:1
DTSTART;VALUE=DATE:20230501
SUMMARY:Tag der Arbeit
LOCATION:Alle Bundesländer
RRULE:FREQ=YEARLY
END:VEVENT
END:VCALENDAR
`

func TestRun_RangeOverThreeYears(t *testing.T) {
	opts := fixtureOptions(t)
	require.NoError(t, os.WriteFile(opts.holidays, []byte(yearlyFeed), 0o644))
	opts.start = "2023-12-01"
	opts.end = "2025-01-31"

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &stdout))
	// 306 weekdays minus one vacation day and 1 May 2024
	assert.Contains(t, stdout.String(), "expected 2432h 0m")
}

func TestRun_Errors(t *testing.T) {
	opts := fixtureOptions(t)
	opts.week = true
	opts.custom = "2024-02"
	err := run(context.Background(), opts, &bytes.Buffer{})
	assert.ErrorIs(t, err, daterange.ErrConflictingOptions)

	opts = fixtureOptions(t)
	opts.custom = "2024-13"
	err = run(context.Background(), opts, &bytes.Buffer{})
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	opts = fixtureOptions(t)
	opts.leaveFile = ""
	err = run(context.Background(), opts, &bytes.Buffer{})
	assert.ErrorContains(t, err, "must be given together")

	opts = fixtureOptions(t)
	opts.region = "XX"
	err = run(context.Background(), opts, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown region")
}

func TestParseSchedule(t *testing.T) {
	s, err := parseSchedule("part_time")
	require.NoError(t, err)
	assert.Equal(t, schedule.KindPartTime, s.Kind)

	s, err = parseSchedule("Mon=8,Wed=4")
	require.NoError(t, err)
	assert.Equal(t, schedule.KindCustom, s.Kind)
	assert.Equal(t, "12", s.WeeklyHours().String())

	_, err = parseSchedule("Funday=8")
	assert.Error(t, err)
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"attendance-file", "leave-file", "previous-overtime", "start", "end",
		"week", "month", "custom", "region", "schedule", "holidays", "out", "xlsx"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
