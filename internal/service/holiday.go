package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"worktime-bot/internal/calendar"
	"worktime-bot/internal/models"
	"worktime-bot/internal/repository"
	"worktime-bot/pkg/holidays"
)

type HolidayService struct {
	repo    repository.HolidayRepository
	feedURL string
	client  *http.Client
	loc     *time.Location
	now     func() time.Time
	logger  *logrus.Logger

	yearsMu sync.Mutex
	years   map[int]bool
}

func NewHolidayService(repo repository.HolidayRepository, feedURL string, timeout time.Duration, loc *time.Location) *HolidayService {
	if loc == nil {
		loc = time.Local
	}
	return &HolidayService{
		repo:    repo,
		feedURL: feedURL,
		client:  &http.Client{Timeout: timeout},
		loc:     loc,
		now:     time.Now,
		logger:  newLogger(),
		years:   make(map[int]bool),
	}
}

// ImportResult summarises one feed import.
type ImportResult struct {
	Events  int
	Stored  int
	Skipped []string
}

// ImportFeed downloads the configured ICS feed (or url when not empty) and
// stores its holidays for the previous, current and next year.
func (s *HolidayService) ImportFeed(ctx context.Context, url string) (*ImportResult, error) {
	if url == "" {
		url = s.feedURL
	}
	if url == "" {
		return nil, fmt.Errorf("%w: HOLIDAYS_ICS_URL is not set", ErrNotConfigured)
	}

	body, err := holidays.Fetch(ctx, s.client, url)
	if err != nil {
		s.logger.WithError(err).WithField("url", url).Error("Failed to fetch holiday feed")
		return nil, err
	}
	defer body.Close()

	return s.Import(body, models.SourceICS)
}

// Import parses an ICS stream and upserts one row per holiday and region.
// Yearly events are stored for the previous, current and next year.
func (s *HolidayService) Import(r io.Reader, source string) (*ImportResult, error) {
	return s.importYears(r, source, holidays.YearsAround(s.now().In(s.loc)))
}

// EnsureYears imports the configured feed for the years between start and
// end that hold no holidays yet, so reports outside the imported window
// still see recurring holidays. Without a feed URL it does nothing.
func (s *HolidayService) EnsureYears(ctx context.Context, start, end time.Time) error {
	if s.feedURL == "" {
		return nil
	}
	s.yearsMu.Lock()
	defer s.yearsMu.Unlock()

	var missing []int
	for _, y := range holidays.YearsBetween(start, end) {
		if s.years[y] {
			continue
		}
		rows, err := s.repo.GetByYear(y)
		if err != nil {
			return fmt.Errorf("load holidays: %w", err)
		}
		if len(rows) > 0 {
			s.years[y] = true
			continue
		}
		missing = append(missing, y)
	}
	if len(missing) == 0 {
		return nil
	}

	body, err := holidays.Fetch(ctx, s.client, s.feedURL)
	if err != nil {
		s.logger.WithError(err).WithField("years", missing).Error("Failed to fetch holiday feed")
		return fmt.Errorf("holidays for %v: %w", missing, err)
	}
	defer body.Close()

	if _, err := s.importYears(body, models.SourceICS, missing); err != nil {
		return err
	}
	for _, y := range missing {
		s.years[y] = true
	}
	return nil
}

func (s *HolidayService) importYears(r io.Reader, source string, years []int) (*ImportResult, error) {
	parsed, skipped, err := holidays.Parse(r, s.loc, years...)
	if err != nil {
		return nil, err
	}

	var rows []models.Holiday
	for _, h := range parsed {
		for _, region := range h.Regions {
			rows = append(rows, models.Holiday{
				Date:        models.DateKey(h.Date),
				Region:      region,
				Description: h.Name,
				Source:      source,
			})
		}
	}

	if _, err := s.repo.BulkUpsert(rows); err != nil {
		return nil, fmt.Errorf("store holidays: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"events":  len(parsed),
		"rows":    len(rows),
		"skipped": len(skipped),
	}).Info("Holiday feed imported")
	return &ImportResult{Events: len(parsed), Stored: len(rows), Skipped: skipped}, nil
}

// AddManual stores a single holiday, for example a company-wide closing day.
func (s *HolidayService) AddManual(date time.Time, region, description string) error {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = holidays.Nationwide
	}
	if region != holidays.Nationwide && !holidays.ValidRegion(region) {
		return fmt.Errorf("%w %q", ErrInvalidRegion, region)
	}
	_, err := s.repo.BulkUpsert([]models.Holiday{{
		Date:        date,
		Region:      region,
		Description: description,
		Source:      models.SourceManual,
	}})
	return err
}

// InRange returns holidays observed in region between start and end.
func (s *HolidayService) InRange(start, end time.Time, region string) ([]models.Holiday, error) {
	return s.repo.GetInRange(start, end, holidays.Nationwide, strings.ToUpper(region))
}

// Fill adds the holidays of region between start and end to store.
func (s *HolidayService) Fill(store *calendar.Store, start, end time.Time, region string) error {
	rows, err := s.InRange(start, end, region)
	if err != nil {
		return fmt.Errorf("load holidays: %w", err)
	}
	for _, h := range rows {
		store.AddHoliday(calendar.HolidayFact{
			Date:        models.LocalDate(h.Date, store.Location()),
			Region:      h.Region,
			Description: h.Description,
		})
	}
	return nil
}

func (s *HolidayService) Count() (int64, error) {
	return s.repo.Count()
}

func (s *HolidayService) FormatYear(year int, region string) (string, error) {
	rows, err := s.repo.GetByYear(year)
	if err != nil {
		return "", err
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("🎉 Holidays %d (%s):", year, region))
	for _, h := range rows {
		if h.Region != holidays.Nationwide && h.Region != region {
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s %s", h.Date.Format("02.01.2006"), h.Description))
	}
	if len(lines) == 1 {
		return fmt.Sprintf("📭 No holidays stored for %d. An admin can run /loadholidays.", year), nil
	}
	return strings.Join(lines, "\n"), nil
}
