package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktime-bot/internal/models"
	"worktime-bot/internal/schedule"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	repos, err := NewRepositories(db)
	require.NoError(t, err)
	return repos
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createUser(t *testing.T, repos *Repositories, chatID int64) *models.User {
	t.Helper()
	u := &models.User{ChatID: chatID, FirstName: "Anna", Role: models.RoleClient, Region: "BB"}
	require.NoError(t, repos.Users.Create(u))
	return u
}

func TestUserRepository(t *testing.T) {
	repos := newTestRepos(t)
	u := createUser(t, repos, 42)

	assert.ErrorIs(t, repos.Users.Create(&models.User{ChatID: 42, FirstName: "Dup"}), ErrUserExists)

	got, err := repos.Users.GetByChatID(42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	missing, err := repos.Users.GetByChatID(7)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repos.Users.UpdateRegion(42, "BE"))
	require.NoError(t, repos.Users.UpdateCarryOver(42, decimal.RequireFromString("-3.5")))
	require.NoError(t, repos.Users.UpdateCredentials(42, "s", "c", "17"))
	require.NoError(t, repos.Users.UpdateRole(42, models.RoleAdmin))
	assert.ErrorIs(t, repos.Users.UpdateRegion(7, "BE"), ErrUserNotFound)

	got, err = repos.Users.GetByChatID(42)
	require.NoError(t, err)
	assert.Equal(t, "BE", got.Region)
	assert.True(t, got.CarryOver.Equal(decimal.RequireFromString("-3.5")))
	assert.True(t, got.HasCredentials())
	assert.True(t, got.IsAdmin())

	total, admins, err := repos.Users.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, admins)

	require.NoError(t, repos.Users.Delete(42))
	assert.ErrorIs(t, repos.Users.Delete(42), ErrUserNotFound)
}

func TestWorkScheduleRepository_Upsert(t *testing.T) {
	repos := newTestRepos(t)
	u := createUser(t, repos, 1)

	ws := &models.WorkSchedule{UserID: u.ID}
	ws.SetSchedule(schedule.FullTime())
	require.NoError(t, repos.Schedules.Upsert(ws))

	second := &models.WorkSchedule{UserID: u.ID}
	second.SetSchedule(schedule.PartTime())
	require.NoError(t, repos.Schedules.Upsert(second))

	got, err := repos.Schedules.GetByUserID(u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, string(schedule.KindPartTime), got.Kind)
	assert.True(t, got.ToSchedule().WeeklyHours().Equal(decimal.NewFromInt(20)))

	all, err := repos.Schedules.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	bad := &models.WorkSchedule{UserID: u.ID, Monday: decimal.NewFromInt(25)}
	assert.ErrorIs(t, repos.Schedules.Upsert(bad), ErrInvalidData)
}

func TestHolidayRepository(t *testing.T) {
	repos := newTestRepos(t)

	n, err := repos.Holidays.BulkUpsert([]models.Holiday{
		{Date: date(2024, 10, 3), Region: "ALL", Description: "Tag der Deutschen Einheit", Source: models.SourceICS},
		{Date: date(2024, 10, 31), Region: "BB", Description: "Reformationstag", Source: models.SourceICS},
		{Date: date(2024, 11, 1), Region: "BY", Description: "Allerheiligen", Source: models.SourceICS},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = repos.Holidays.BulkUpsert([]models.Holiday{
		{Date: date(2024, 10, 3), Region: "ALL", Description: "Einheit", Source: models.SourceManual},
	})
	require.NoError(t, err)

	count, err := repos.Holidays.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	got, err := repos.Holidays.GetInRange(date(2024, 10, 1), date(2024, 11, 30), "ALL", "BB")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Einheit", got[0].Description)
	assert.Equal(t, 2024, got[0].Year)

	byYear, err := repos.Holidays.GetByYear(2024)
	require.NoError(t, err)
	assert.Len(t, byYear, 3)

	require.NoError(t, repos.Holidays.DeleteBySource(models.SourceICS))
	count, err = repos.Holidays.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestLeaveRepository(t *testing.T) {
	repos := newTestRepos(t)
	u := createUser(t, repos, 1)

	manual := &models.LeavePeriod{
		UserID: u.ID, StartDate: date(2024, 2, 5), EndDate: date(2024, 2, 9),
		Kind: "vacation", Source: models.SourceManual,
	}
	require.NoError(t, repos.Leaves.Create(manual))
	assert.Equal(t, 5, manual.Days())

	inverted := &models.LeavePeriod{UserID: u.ID, StartDate: date(2024, 2, 9), EndDate: date(2024, 2, 5), Kind: "sick"}
	assert.ErrorIs(t, repos.Leaves.Create(inverted), ErrInvalidData)

	require.NoError(t, repos.Leaves.ReplaceBySource(u.ID, models.SourceOdoo, []models.LeavePeriod{
		{StartDate: date(2024, 2, 20), EndDate: date(2024, 2, 20), Kind: "sick"},
		{StartDate: date(2024, 3, 1), EndDate: date(2024, 3, 4), Kind: "vacation"},
	}))
	require.NoError(t, repos.Leaves.ReplaceBySource(u.ID, models.SourceOdoo, []models.LeavePeriod{
		{StartDate: date(2024, 2, 21), EndDate: date(2024, 2, 21), Kind: "sick"},
	}))

	all, err := repos.Leaves.GetByUserID(u.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	feb, err := repos.Leaves.GetOverlapping(u.ID, date(2024, 2, 1), date(2024, 2, 29))
	require.NoError(t, err)
	require.Len(t, feb, 2)
	assert.Equal(t, models.SourceManual, feb[0].Source)
	assert.Equal(t, models.SourceOdoo, feb[1].Source)

	edge, err := repos.Leaves.GetOverlapping(u.ID, date(2024, 2, 9), date(2024, 2, 9))
	require.NoError(t, err)
	assert.Len(t, edge, 1)

	require.NoError(t, repos.Leaves.Delete(u.ID, manual.ID))
	assert.Error(t, repos.Leaves.Delete(u.ID, manual.ID))
}

func TestHalfDayRepository(t *testing.T) {
	repos := newTestRepos(t)

	require.NoError(t, repos.HalfDays.Upsert(&models.HalfDay{
		Date: date(2024, 12, 24), Mode: "fraction", Value: decimal.RequireFromString("0.5"),
	}))
	require.NoError(t, repos.HalfDays.Upsert(&models.HalfDay{
		Date: date(2024, 12, 24), Mode: "fixed", Value: decimal.NewFromInt(4), Description: "Heiligabend",
	}))
	assert.ErrorIs(t, repos.HalfDays.Upsert(&models.HalfDay{Date: date(2024, 12, 31), Value: decimal.Zero}), ErrInvalidData)

	got, err := repos.HalfDays.GetInRange(date(2024, 12, 1), date(2024, 12, 31))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fixed", got[0].Mode)
	assert.True(t, got[0].Value.Equal(decimal.NewFromInt(4)))

	require.NoError(t, repos.HalfDays.DeleteByDate(date(2024, 12, 24)))
	all, err := repos.HalfDays.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAttendanceRepository_ReplaceInRange(t *testing.T) {
	repos := newTestRepos(t)
	u := createUser(t, repos, 1)
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	at := func(d, h int) time.Time { return time.Date(2024, 2, d, h, 0, 0, 0, berlin) }
	require.NoError(t, repos.Attendance.ReplaceInRange(u.ID, date(2024, 2, 1), date(2024, 2, 29), []models.Attendance{
		{CheckIn: at(1, 8), CheckOut: at(1, 12)},
		{CheckIn: at(1, 13), CheckOut: at(1, 17)},
		{CheckIn: at(2, 9), CheckOut: at(2, 17)},
	}))

	rows, err := repos.Attendance.GetInRange(u.ID, date(2024, 2, 1), date(2024, 2, 1))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 240, rows[0].WorkedMinutes())
	assert.Equal(t, "4h 0m", rows[1].FormatDuration())

	// a second sync of the same range replaces rather than duplicates
	require.NoError(t, repos.Attendance.ReplaceInRange(u.ID, date(2024, 2, 1), date(2024, 2, 29), []models.Attendance{
		{CheckIn: at(2, 9), CheckOut: at(2, 16)},
	}))
	count, err := repos.Attendance.CountByUserID(u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	latest, err := repos.Attendance.GetLatest(u.ID, 0)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.True(t, latest[0].CheckOut.Equal(at(2, 16)))
}

func TestMonthlyBalanceRepository(t *testing.T) {
	repos := newTestRepos(t)
	u := createUser(t, repos, 1)

	mb := &models.MonthlyBalance{
		UserID: u.ID, Year: 2024, Month: 2,
		ExpectedHours: decimal.NewFromInt(140), ActualHours: decimal.RequireFromString("178.5"),
	}
	require.NoError(t, repos.Balances.Upsert(mb))
	assert.True(t, mb.DifferenceHours.Equal(decimal.RequireFromString("38.5")))

	again := &models.MonthlyBalance{
		UserID: u.ID, Year: 2024, Month: 2,
		ExpectedHours: decimal.NewFromInt(140), ActualHours: decimal.NewFromInt(130),
	}
	require.NoError(t, repos.Balances.Upsert(again))

	got, err := repos.Balances.GetByUserAndMonth(u.ID, 2024, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.DifferenceHours.Equal(decimal.NewFromInt(-10)))

	none, err := repos.Balances.GetByUserAndMonth(u.ID, 2024, 3)
	require.NoError(t, err)
	assert.Nil(t, none)

	assert.ErrorIs(t, repos.Balances.Upsert(&models.MonthlyBalance{UserID: u.ID, Year: 2024, Month: 13}), ErrInvalidData)

	all, err := repos.Balances.GetByUserID(u.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
