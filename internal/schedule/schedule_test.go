package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestFullTime(t *testing.T) {
	s := FullTime()

	// 2024-02-05 is a Monday
	mon := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	assert.True(t, s.ExpectedHours(mon).Equal(d("8")))
	assert.True(t, s.ExpectedHours(mon.AddDate(0, 0, 5)).IsZero(), "saturday")
	assert.True(t, s.ExpectedHours(mon.AddDate(0, 0, 6)).IsZero(), "sunday")
	assert.True(t, s.WeeklyHours().Equal(d("40")))
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, s.WorkingDays())
}

func TestPartTime(t *testing.T) {
	s := PartTime()
	assert.True(t, s.WeeklyHours().Equal(d("20")))
	assert.Equal(t, "Mon=4,Tue=4,Wed=4,Thu=4,Fri=4", s.String())
}

func TestDistribute(t *testing.T) {
	s, err := Distribute("Custom", d("30"), time.Monday, time.Tuesday, time.Wednesday, time.Thursday)
	require.NoError(t, err)

	assert.True(t, s.Hours[time.Monday].Equal(d("7.5")))
	assert.True(t, s.Hours[time.Friday].IsZero())
	assert.True(t, s.WeeklyHours().Equal(d("30")))

	s, err = Distribute("Custom", d("40"), time.Friday, time.Monday, time.Wednesday)
	require.NoError(t, err)
	assert.True(t, s.Hours[time.Monday].Equal(d("13.3333")))
	assert.True(t, s.Hours[time.Wednesday].Equal(d("13.3333")))
	assert.True(t, s.Hours[time.Friday].Equal(d("13.3334")))
	assert.True(t, s.WeeklyHours().Equal(d("40")))

	s, err = Distribute("Custom", d("10"), time.Sunday, time.Saturday, time.Monday)
	require.NoError(t, err)
	assert.True(t, s.Hours[time.Sunday].Equal(d("3.3334")))
	assert.True(t, s.WeeklyHours().Equal(d("10")))

	_, err = Distribute("Custom", d("30"))
	assert.ErrorIs(t, err, ErrInvalidHours)
	_, err = Distribute("Custom", d("0"), time.Monday)
	assert.ErrorIs(t, err, ErrInvalidHours)
}

func TestParseHours(t *testing.T) {
	s, err := ParseHours("mine", "Mon=8, tue=7.5,Friday=6")
	require.NoError(t, err)

	assert.Equal(t, KindCustom, s.Kind)
	assert.True(t, s.Hours[time.Tuesday].Equal(d("7.5")))
	assert.True(t, s.Hours[time.Wednesday].IsZero())
	assert.True(t, s.WeeklyHours().Equal(d("21.5")))
	assert.Equal(t, "Mon=8,Tue=7.5,Fri=6", s.String())

	for _, bad := range []string{"", "Mon", "Funday=3", "Mon=abc", "Mon=25", "Mon=-1"} {
		_, err := ParseHours("bad", bad)
		assert.ErrorIs(t, err, ErrInvalidHours, bad)
	}
}

func TestParseDays(t *testing.T) {
	days, err := ParseDays("fri, Mon,wed")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, days)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Set("42", PartTime())

	s, err := r.Lookup("42")
	require.NoError(t, err)
	assert.Equal(t, KindPartTime, s.Kind)

	_, err = r.Lookup("7")
	var unknown *UnknownScheduleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "7", unknown.Identity)
	assert.ErrorIs(t, err, ErrUnknownSchedule)
}
