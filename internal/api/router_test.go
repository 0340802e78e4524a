package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktime-bot/internal/calendar"
	"worktime-bot/internal/daterange"
	"worktime-bot/internal/models"
	"worktime-bot/internal/reconcile"
	"worktime-bot/internal/report"
	"worktime-bot/internal/schedule"
	"worktime-bot/internal/service"
	"worktime-bot/pkg/holidays"
)

type fakeUsers map[int64]*models.User

func (f fakeUsers) GetUser(chatID int64) (*models.User, error) {
	if u, ok := f[chatID]; ok {
		return u, nil
	}
	return nil, service.ErrUserNotFound
}

type fakeReports struct {
	synced   bool
	lastOpts daterange.Options
	err      error
}

func (f *fakeReports) Generate(_ context.Context, user *models.User, opts daterange.Options) (*report.Report, error) {
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	anchor := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)
	rng, err := daterange.Resolve(opts, anchor, time.Monday)
	if err != nil {
		return nil, err
	}
	store := calendar.NewStore(time.UTC)
	store.AddRawHoliday("2024-02-12", "ALL", "Company day")

	var attendance []reconcile.Interval
	for _, d := range rng.Days() {
		if d.Weekday() == time.Tuesday {
			attendance = append(attendance, reconcile.Interval{Start: d.Add(9 * time.Hour), End: d.Add(17 * time.Hour)})
		}
	}
	return report.Reconcile(rng, schedule.FullTime(), store.For(user.Region, user.Identity()), attendance,
		report.WithClock(func() time.Time { return anchor }))
}

func (f *fakeReports) SyncAndGenerate(ctx context.Context, user *models.User, opts daterange.Options) (*report.Report, *service.SyncResult, error) {
	f.synced = true
	rep, err := f.Generate(ctx, user, opts)
	return rep, &service.SyncResult{}, err
}

func newTestRouter(token string) (http.Handler, *fakeReports) {
	users := fakeUsers{7: {ChatID: 7, FirstName: "Ada", Region: "BB"}}
	reports := &fakeReports{}
	return NewRouter(users, reports, Options{Token: token}), reports
}

func do(t *testing.T, h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) (Response, map[string]any) {
	t.Helper()
	var raw struct {
		Response
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	return raw.Response, raw.Data
}

func TestHealthz(t *testing.T) {
	h, _ := newTestRouter("secret")
	rec := do(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestReport_RequiresToken(t *testing.T) {
	h, _ := newTestRouter("secret")

	rec := do(t, h, "/api/users/7/report")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, "/api/users/7/report", "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, "/api/users/7/report?week=1", "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReport_JSONWeek(t *testing.T) {
	h, reports := newTestRouter("")

	rec := do(t, h, "/api/users/7/report?week=1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.False(t, reports.synced)
	assert.True(t, reports.lastOpts.Week)

	resp, data := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "2024-02-12", data["start"])
	assert.Equal(t, "2024-02-18", data["end"])
	// monday is a holiday, so four working days remain
	assert.EqualValues(t, 32, data["expected_hours"])
	assert.EqualValues(t, 8, data["actual_hours"])
	assert.EqualValues(t, -24, data["difference_hours"])
	assert.Equal(t, string(report.Undertime), data["status"])
	assert.Len(t, data["days"], 7)
}

func TestReport_Sync(t *testing.T) {
	h, reports := newTestRouter("")
	rec := do(t, h, "/api/users/7/report?custom=2024-01&sync=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reports.synced)
	assert.Equal(t, "2024-01", reports.lastOpts.CustomMonth)
}

func TestReport_Errors(t *testing.T) {
	h, reports := newTestRouter("")

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"conflicting", "/api/users/7/report?week=1&month=1", http.StatusBadRequest, "conflicting_options"},
		{"bad month", "/api/users/7/report?custom=2024-13", http.StatusBadRequest, "invalid_range"},
		{"inverted", "/api/users/7/report?start=2024-02-10&end=2024-02-01", http.StatusBadRequest, "invalid_range"},
		{"bad flag", "/api/users/7/report?week=maybe", http.StatusBadRequest, "invalid_query"},
		{"bad format", "/api/users/7/report?format=csv", http.StatusBadRequest, "invalid_format"},
		{"bad chat id", "/api/users/abc/report", http.StatusBadRequest, "invalid_chat_id"},
		{"unknown user", "/api/users/99/report", http.StatusNotFound, "user_not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			resp, _ := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}

	reports.err = &schedule.UnknownScheduleError{Identity: "7"}
	rec := do(t, h, "/api/users/7/report")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	reports.err = fmt.Errorf("holidays for [2021]: %w", holidays.ErrFeedUnavailable)
	rec = do(t, h, "/api/users/7/report?custom=2021-05")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReport_Files(t *testing.T) {
	h, _ := newTestRouter("")

	rec := do(t, h, "/api/users/7/report?month=1&format=pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "worktimes-2024-02.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = do(t, h, "/api/users/7/report?month=1&format=xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "worktimes-2024-02.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}
