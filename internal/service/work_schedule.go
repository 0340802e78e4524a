package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"worktime-bot/internal/models"
	"worktime-bot/internal/repository"
	"worktime-bot/internal/schedule"
)

type WorkScheduleService struct {
	repo     repository.WorkScheduleRepository
	userRepo repository.UserRepository
	logger   *logrus.Logger
}

func NewWorkScheduleService(repo repository.WorkScheduleRepository, userRepo repository.UserRepository) *WorkScheduleService {
	return &WorkScheduleService{
		repo:     repo,
		userRepo: userRepo,
		logger:   newLogger(),
	}
}

// SetSchedule stores sched as the user's schedule, replacing any earlier one.
func (s *WorkScheduleService) SetSchedule(user *models.User, sched schedule.Schedule) error {
	if err := sched.Validate(); err != nil {
		return err
	}

	ws := &models.WorkSchedule{UserID: user.ID}
	ws.SetSchedule(sched)
	if err := s.repo.Upsert(ws); err != nil {
		return fmt.Errorf("save work schedule: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"chat_id": user.ChatID,
		"kind":    sched.Kind,
		"weekly":  sched.WeeklyHours().String(),
	}).Info("Work schedule set")
	return nil
}

// SetPreset stores one of the named presets: full_time or part_time.
func (s *WorkScheduleService) SetPreset(user *models.User, kind schedule.Kind) (schedule.Schedule, error) {
	var sched schedule.Schedule
	switch kind {
	case schedule.KindFullTime:
		sched = schedule.FullTime()
	case schedule.KindPartTime:
		sched = schedule.PartTime()
	default:
		return schedule.Schedule{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidArgument, kind)
	}
	return sched, s.SetSchedule(user, sched)
}

// SetCustom parses input and stores the result. Two forms are accepted:
//
//	Mon=8,Tue=8,Wed=4       explicit hours per weekday
//	Mon,Tue,Thu 24          a weekly total spread evenly over the days
func (s *WorkScheduleService) SetCustom(user *models.User, input string) (schedule.Schedule, error) {
	sched, err := ParseCustomSchedule(input)
	if err != nil {
		return schedule.Schedule{}, err
	}
	return sched, s.SetSchedule(user, sched)
}

func ParseCustomSchedule(input string) (schedule.Schedule, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return schedule.Schedule{}, fmt.Errorf("%w: empty schedule", ErrInvalidArgument)
	}
	if strings.Contains(input, "=") {
		return schedule.ParseHours("Custom", input)
	}

	fields := strings.Fields(input)
	if len(fields) != 2 {
		return schedule.Schedule{}, fmt.Errorf("%w: expected \"Mon,Tue,Wed 24\" or \"Mon=8,Tue=8\"", ErrInvalidArgument)
	}
	days, err := schedule.ParseDays(fields[0])
	if err != nil {
		return schedule.Schedule{}, err
	}
	weekly, err := decimal.NewFromString(strings.ReplaceAll(fields[1], ",", "."))
	if err != nil {
		return schedule.Schedule{}, fmt.Errorf("%w: weekly hours %q", ErrInvalidArgument, fields[1])
	}
	return schedule.Distribute("Custom", weekly, days...)
}

// GetSchedule returns the user's schedule or an *schedule.UnknownScheduleError.
func (s *WorkScheduleService) GetSchedule(user *models.User) (schedule.Schedule, error) {
	ws, err := s.repo.GetByUserID(user.ID)
	if err != nil {
		return schedule.Schedule{}, fmt.Errorf("get work schedule: %w", err)
	}
	if ws == nil {
		return schedule.Schedule{}, &schedule.UnknownScheduleError{Identity: user.Identity()}
	}
	return ws.ToSchedule(), nil
}

// Registry loads every stored schedule keyed by user identity.
func (s *WorkScheduleService) Registry() (*schedule.Registry, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, err
	}
	identities := make(map[uint]string, len(users))
	for _, u := range users {
		identities[u.ID] = u.Identity()
	}

	reg := schedule.NewRegistry()
	for _, ws := range all {
		if id, ok := identities[ws.UserID]; ok {
			reg.Set(id, ws.ToSchedule())
		}
	}
	return reg, nil
}

func (s *WorkScheduleService) FormatSchedule(sched schedule.Schedule) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("⏰ Work schedule: %s (%sh/week)", sched.Name, sched.WeeklyHours().StringFixed(1)))
	lines = append(lines, "")
	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(sched.WeekStart) + i) % 7)
		h := sched.Hours[wd]
		if h.IsZero() {
			lines = append(lines, fmt.Sprintf("%-9s -", wd.String()))
			continue
		}
		lines = append(lines, fmt.Sprintf("%-9s %sh", wd.String(), h.String()))
	}
	return strings.Join(lines, "\n")
}
