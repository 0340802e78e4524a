package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"worktime-bot/internal/calendar"
	"worktime-bot/internal/config"
	"worktime-bot/internal/models"
	"worktime-bot/internal/repository"
)

// HalfDayService manages dates with a reduced expectation. Stored half days
// and those of the calendar file are both applied; a stored entry wins.
type HalfDayService struct {
	repo        repository.HalfDayRepository
	file        *config.CalendarConfig
	defaultMode calendar.HalfDayMode
	logger      *logrus.Logger
}

func NewHalfDayService(repo repository.HalfDayRepository, file *config.CalendarConfig, defaultMode calendar.HalfDayMode) *HalfDayService {
	if defaultMode == "" {
		defaultMode = calendar.HalfDayFraction
	}
	return &HalfDayService{repo: repo, file: file, defaultMode: defaultMode, logger: newLogger()}
}

// Set stores a half day. An empty mode means the configured default; an
// empty value means half of the day's expectation in either mode.
func (s *HalfDayService) Set(date time.Time, value, mode, description string) (*models.HalfDay, error) {
	m := s.defaultMode
	if mode != "" {
		parsed, err := calendar.ParseHalfDayMode(mode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		m = parsed
	}

	v := calendar.DefaultHalfDayFraction
	if value == "" {
		m = calendar.HalfDayFraction
	} else {
		parsed, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
		if err != nil {
			return nil, fmt.Errorf("%w: value %q", ErrInvalidArgument, value)
		}
		v = parsed
	}
	if !v.IsPositive() || (m == calendar.HalfDayFraction && v.GreaterThan(decimal.NewFromInt(1))) {
		return nil, fmt.Errorf("%w: a fraction must be in (0, 1], fixed hours must be positive", ErrInvalidArgument)
	}

	day := &models.HalfDay{Date: date, Mode: string(m), Value: v, Description: description}
	if err := s.repo.Upsert(day); err != nil {
		return nil, err
	}
	return day, nil
}

func (s *HalfDayService) Delete(date time.Time) error {
	return s.repo.DeleteByDate(date)
}

func (s *HalfDayService) List() ([]models.HalfDay, error) {
	return s.repo.GetAll()
}

// Fill adds the calendar file entries and then the stored half days between
// start and end to store.
func (s *HalfDayService) Fill(store *calendar.Store, start, end time.Time) error {
	if s.file != nil {
		s.file.ApplyHalfDays(store, s.defaultMode)
	}

	rows, err := s.repo.GetInRange(start, end)
	if err != nil {
		return fmt.Errorf("load half days: %w", err)
	}
	for _, h := range rows {
		store.AddHalfDay(calendar.HalfDayFact{
			Date:        models.LocalDate(h.Date, store.Location()),
			Mode:        calendar.HalfDayMode(h.Mode),
			Value:       h.Value,
			Description: h.Description,
		})
	}
	return nil
}

func (s *HalfDayService) FormatList(days []models.HalfDay) string {
	var lines []string
	lines = append(lines, "🕐 Half days:")
	for _, d := range days {
		value := d.Value.String() + "h"
		if calendar.HalfDayMode(d.Mode) == calendar.HalfDayFraction {
			value = "×" + d.Value.String()
		}
		lines = append(lines, fmt.Sprintf("• %s %s %s", d.Date.Format("02.01.2006"), value, d.Description))
	}
	if s.file != nil {
		for _, h := range s.file.HalfDays {
			lines = append(lines, fmt.Sprintf("• %s %s (calendar file) %s", h.Date, h.Value, h.Description))
		}
	}
	if len(lines) == 1 {
		return "📭 No half days configured."
	}
	return strings.Join(lines, "\n")
}
