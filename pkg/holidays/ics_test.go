package holidays

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//holidays//DE\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:1@test\r\n" +
	"DTSTART;VALUE=DATE:20230101\r\n" +
	"SUMMARY:Neujahr\r\n" +
	"LOCATION:Alle Bundesländer\r\n" +
	"RRULE:FREQ=YEARLY\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:2@test\r\n" +
	"DTSTART;VALUE=DATE:20241031\r\n" +
	"SUMMARY:Reformationstag\r\n" +
	"LOCATION:Brandenburg\\, Sachsen\\, Thüringen\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:3@test\r\n" +
	"DTSTART;VALUE=DATE:20241120\r\n" +
	"SUMMARY:Buß- und Bettag\r\n" +
	"LOCATION:Niedersachsen\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:4@test\r\n" +
	"DTSTART;VALUE=DATE:20240229\r\n" +
	"SUMMARY:Schalttag\r\n" +
	"LOCATION:Berlin\r\n" +
	"RRULE:FREQ=YEARLY\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:5@test\r\n" +
	"DTSTART;VALUE=DATE:20240815\r\n" +
	"SUMMARY:Irgendwo\r\n" +
	"LOCATION:Atlantis\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParse(t *testing.T) {
	hs, skipped, err := Parse(strings.NewReader(feed), time.UTC, 2023, 2024, 2025)
	require.NoError(t, err)

	// 3x Neujahr, Reformationstag, Bettag, Schalttag only in 2024
	require.Len(t, hs, 6)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0], "Irgendwo")

	assert.Equal(t, "Neujahr", hs[0].Name)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), hs[0].Date)
	assert.Equal(t, []string{Nationwide}, hs[0].Regions)
	assert.True(t, hs[0].Yearly)

	var reformation, bettag *Holiday
	for i := range hs {
		switch hs[i].Name {
		case "Reformationstag":
			reformation = &hs[i]
		case "Buß- und Bettag":
			bettag = &hs[i]
		}
	}
	require.NotNil(t, reformation)
	assert.Equal(t, []string{"BB", "SN", "TH"}, reformation.Regions)
	assert.True(t, reformation.AppliesTo("bb"))
	assert.False(t, reformation.AppliesTo("BE"))

	require.NotNil(t, bettag)
	assert.Equal(t, []string{"NI"}, bettag.Regions, "niedersachsen must not match sachsen")
	assert.False(t, bettag.AppliesTo("SN"))
}

func TestParse_WithoutYearsKeepsOriginalDate(t *testing.T) {
	hs, _, err := Parse(strings.NewReader(feed), time.UTC)
	require.NoError(t, err)
	assert.Len(t, hs, 4)
}

func TestParse_Garbage(t *testing.T) {
	_, _, err := Parse(strings.NewReader("<html>login</html>"), time.UTC)
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feiertage.ics" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.Client(), srv.URL+"/feiertage.ics")
	require.NoError(t, err)
	defer body.Close()

	hs, _, err := Parse(body, time.UTC, YearsAround(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))...)
	require.NoError(t, err)
	assert.NotEmpty(t, hs)

	_, err = Fetch(context.Background(), srv.Client(), srv.URL+"/missing.ics")
	assert.ErrorIs(t, err, ErrFeedUnavailable)
}

func TestYearsBetween(t *testing.T) {
	start := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []int{2023, 2024, 2025}, YearsBetween(start, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, []int{2023}, YearsBetween(start, start))
}

func TestRegions(t *testing.T) {
	assert.True(t, ValidRegion("bb"))
	assert.False(t, ValidRegion("XX"))
	name, ok := RegionName("TH")
	assert.True(t, ok)
	assert.Equal(t, "thueringen", name)
	assert.Len(t, RegionCodes(), 16)
}
