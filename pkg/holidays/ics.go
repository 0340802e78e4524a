// Package holidays reads public holidays from an iCalendar feed whose events
// carry the German states they apply to in LOCATION.
package holidays

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

const maxFeedSize = 5 * 1024 * 1024

var ErrFeedUnavailable = errors.New("holiday feed unavailable")

type Holiday struct {
	Date    time.Time
	Name    string
	Regions []string // state codes or Nationwide
	Yearly  bool
}

// AppliesTo reports whether the holiday is observed in region.
func (h Holiday) AppliesTo(region string) bool {
	region = strings.ToUpper(strings.TrimSpace(region))
	for _, r := range h.Regions {
		if r == Nationwide || r == region {
			return true
		}
	}
	return false
}

// Fetch downloads the feed. webcal:// links are fetched over https.
func Fetch(ctx context.Context, client *http.Client, rawURL string) (io.ReadCloser, error) {
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build holiday request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d", ErrFeedUnavailable, resp.StatusCode)
	}
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, maxFeedSize),
		Closer: resp.Body,
	}, nil
}

// Parse reads all events of the feed. Events with a yearly RRULE are
// repeated on the same month and day for every year in years; Feb 29 is
// dropped in common years. Events without a usable date or location are
// returned in skipped by summary.
func Parse(r io.Reader, loc *time.Location, years ...int) (holidays []Holiday, skipped []string, err error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse holiday feed: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}

	for _, evt := range cal.Events() {
		name := propValue(evt, ics.ComponentPropertySummary)
		date, err := eventDate(evt, loc)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		regions := regionsFromLocation(propValue(evt, ics.ComponentPropertyLocation))
		if len(regions) == 0 {
			skipped = append(skipped, fmt.Sprintf("%s: no known region in location", name))
			continue
		}

		yearly := strings.Contains(strings.ToUpper(propValue(evt, ics.ComponentPropertyRrule)), "FREQ=YEARLY")
		if !yearly || len(years) == 0 {
			holidays = append(holidays, Holiday{Date: date, Name: name, Regions: regions, Yearly: yearly})
			continue
		}
		for _, y := range years {
			d := time.Date(y, date.Month(), date.Day(), 0, 0, 0, 0, loc)
			if d.Month() != date.Month() {
				continue
			}
			holidays = append(holidays, Holiday{Date: d, Name: name, Regions: regions, Yearly: true})
		}
	}

	sort.SliceStable(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays, skipped, nil
}

// YearsAround returns the year before, of and after t.
func YearsAround(t time.Time) []int {
	return []int{t.Year() - 1, t.Year(), t.Year() + 1}
}

// YearsBetween returns every calendar year from start to end inclusive.
func YearsBetween(start, end time.Time) []int {
	var years []int
	for y := start.Year(); y <= end.Year(); y++ {
		years = append(years, y)
	}
	return years
}

func propValue(evt *ics.VEvent, name ics.ComponentProperty) string {
	prop := evt.GetProperty(name)
	if prop == nil {
		return ""
	}
	return strings.TrimSpace(prop.Value)
}

// eventDate reads DTSTART as a calendar date; times are ignored.
func eventDate(evt *ics.VEvent, loc *time.Location) (time.Time, error) {
	val := propValue(evt, ics.ComponentPropertyDtStart)
	if len(val) < 8 {
		return time.Time{}, fmt.Errorf("invalid DTSTART %q", val)
	}
	t, err := time.Parse("20060102", val[:8])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid DTSTART %q", val)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}
