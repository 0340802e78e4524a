package daterange

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve_CustomMonthLeapYear(t *testing.T) {
	r, err := Resolve(Options{CustomMonth: "2024-02"}, date(2026, time.October, 17), time.Monday)
	require.NoError(t, err)

	assert.Equal(t, date(2024, time.February, 1), r.Start)
	assert.Equal(t, date(2024, time.February, 29), r.End)
	assert.Equal(t, ModeCustomMonth, r.Mode)
	assert.True(t, r.MonthAligned())
	assert.Equal(t, "2024-02", r.Label())
}

func TestResolve_CustomMonthCommonYear(t *testing.T) {
	r, err := Resolve(Options{CustomMonth: "2023-02"}, date(2026, time.October, 17), time.Monday)
	require.NoError(t, err)

	assert.Equal(t, date(2023, time.February, 1), r.Start)
	assert.Equal(t, date(2023, time.February, 28), r.End)
	assert.Equal(t, 28, r.Len())
}

func TestResolve_CustomMonthMalformed(t *testing.T) {
	for _, input := range []string{"2024-2", "2024/02", "24-02", "2024-13", "2024-00", "1999-05", "2101-01", "abcd-ef"} {
		_, err := Resolve(Options{CustomMonth: input}, date(2026, time.October, 17), time.Monday)
		require.Error(t, err, input)

		var rangeErr *InvalidRangeError
		assert.ErrorAs(t, err, &rangeErr, input)
		assert.ErrorIs(t, err, ErrInvalidRange, input)
		assert.Equal(t, input, rangeErr.Input)
	}
}

func TestResolve_WeekAndCustomMonthConflict(t *testing.T) {
	_, err := Resolve(Options{Week: true, CustomMonth: "2024-02"}, date(2026, time.October, 17), time.Monday)
	require.Error(t, err)

	var conflict *ConflictingOptionsError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []Mode{ModeWeek, ModeCustomMonth}, conflict.Modes)
	assert.True(t, errors.Is(err, ErrConflictingOptions))
}

func TestResolve_ConflictCheckedBeforeFormat(t *testing.T) {
	// a malformed custom month combined with another mode still reports the conflict
	_, err := Resolve(Options{Month: true, CustomMonth: "garbage"}, date(2026, time.October, 17), time.Monday)
	assert.ErrorIs(t, err, ErrConflictingOptions)
}

func TestResolve_Week(t *testing.T) {
	// 2026-10-17 is a Saturday
	r, err := Resolve(Options{Week: true}, time.Date(2026, time.October, 17, 15, 4, 0, 0, time.UTC), time.Monday)
	require.NoError(t, err)

	assert.Equal(t, date(2026, time.October, 12), r.Start)
	assert.Equal(t, date(2026, time.October, 18), r.End)
	assert.Equal(t, time.Monday, r.Start.Weekday())
	assert.Equal(t, 7, r.Len())
	assert.Equal(t, "2026-W42", r.Label())
}

func TestResolve_WeekCustomStart(t *testing.T) {
	r, err := Resolve(Options{Week: true}, date(2026, time.October, 17), time.Sunday)
	require.NoError(t, err)

	assert.Equal(t, date(2026, time.October, 11), r.Start)
	assert.Equal(t, date(2026, time.October, 17), r.End)
}

func TestResolve_WeekOnWeekStart(t *testing.T) {
	r := WeekOf(date(2026, time.October, 12), time.Monday)
	assert.Equal(t, date(2026, time.October, 12), r.Start)
}

func TestResolve_MonthAndDefault(t *testing.T) {
	anchor := date(2026, time.October, 17)

	month, err := Resolve(Options{Month: true}, anchor, time.Monday)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.October, 1), month.Start)
	assert.Equal(t, date(2026, time.October, 31), month.End)

	def, err := Resolve(Options{}, anchor, time.Monday)
	require.NoError(t, err)
	assert.Equal(t, month, def)
}

func TestResolve_Explicit(t *testing.T) {
	r, err := Resolve(Options{Start: "2024-03-04", End: "2024-03-04"}, date(2026, time.October, 17), time.Monday)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "2024-03-04_2024-03-04", r.Label())

	_, err = Resolve(Options{Start: "2024-03-05", End: "2024-03-04"}, date(2026, time.October, 17), time.Monday)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Resolve(Options{Start: "2024-03-05"}, date(2026, time.October, 17), time.Monday)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestResolve_UsesAnchorLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	r, err := Resolve(Options{CustomMonth: "2024-03"}, time.Date(2024, 5, 1, 12, 0, 0, 0, berlin), time.Monday)
	require.NoError(t, err)
	assert.Equal(t, berlin, r.Start.Location())
	// DST switch on 2024-03-31 must not drop or duplicate a day
	assert.Equal(t, 31, r.Len())
}

func TestRange_Contains(t *testing.T) {
	r := MonthOf(date(2024, time.February, 10))
	assert.True(t, r.Contains(time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(date(2024, time.March, 1)))
	assert.False(t, r.Contains(date(2024, time.January, 31)))
}
