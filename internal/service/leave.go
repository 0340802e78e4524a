package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"worktime-bot/internal/calendar"
	"worktime-bot/internal/models"
	"worktime-bot/internal/repository"
)

type LeaveService struct {
	repo   repository.LeaveRepository
	loc    *time.Location
	logger *logrus.Logger
}

func NewLeaveService(repo repository.LeaveRepository, loc *time.Location) *LeaveService {
	if loc == nil {
		loc = time.Local
	}
	return &LeaveService{repo: repo, loc: loc, logger: newLogger()}
}

// AddLeave records a manual leave period. Overlaps with any stored period
// of the same user are rejected.
func (s *LeaveService) AddLeave(user *models.User, kind calendar.LeaveKind, start, end time.Time, description string) (*models.LeavePeriod, error) {
	if _, err := calendar.ParseLeaveKind(string(kind)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	start, end = models.DateKey(start), models.DateKey(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrInvalidArgument)
	}

	existing, err := s.repo.GetOverlapping(user.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("check overlapping leave: %w", err)
	}
	if len(existing) > 0 {
		e := existing[0]
		return nil, fmt.Errorf("%w: %s %s..%s", ErrLeaveOverlap, e.Kind,
			e.StartDate.Format("02.01.2006"), e.EndDate.Format("02.01.2006"))
	}

	period := &models.LeavePeriod{
		UserID:      user.ID,
		StartDate:   start,
		EndDate:     end,
		Kind:        string(kind),
		Description: description,
		Source:      models.SourceManual,
	}
	if err := s.repo.Create(period); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"chat_id": user.ChatID,
		"kind":    kind,
		"days":    period.Days(),
	}).Info("Leave added")
	return period, nil
}

func (s *LeaveService) ListLeaves(user *models.User) ([]models.LeavePeriod, error) {
	return s.repo.GetByUserID(user.ID)
}

// DeleteLeave removes a manual period. Synced periods are owned by /sync.
func (s *LeaveService) DeleteLeave(user *models.User, id uint) error {
	leave, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if leave == nil || leave.UserID != user.ID {
		return fmt.Errorf("%w: leave %d not found", ErrInvalidArgument, id)
	}
	if leave.Source != models.SourceManual {
		return fmt.Errorf("%w: leave %d comes from %s, sync again instead", ErrInvalidArgument, id, leave.Source)
	}
	return s.repo.Delete(user.ID, id)
}

// ReplaceSynced swaps the user's periods that came from source.
func (s *LeaveService) ReplaceSynced(user *models.User, source string, periods []models.LeavePeriod) error {
	return s.repo.ReplaceBySource(user.ID, source, periods)
}

// Fill adds the user's leave days between start and end to store.
// Overlapping days from different periods are reported as skipped by the store.
func (s *LeaveService) Fill(store *calendar.Store, user *models.User, start, end time.Time) error {
	periods, err := s.repo.GetOverlapping(user.ID, start, end)
	if err != nil {
		return fmt.Errorf("load leave: %w", err)
	}
	loc := store.Location()
	for _, p := range periods {
		desc := p.Description
		if desc == "" {
			desc = p.TypeName
		}
		store.AddLeavePeriod(user.Identity(), calendar.LeaveKind(p.Kind),
			models.LocalDate(p.StartDate, loc), models.LocalDate(p.EndDate, loc), desc)
	}
	return nil
}

func leaveEmoji(kind string) string {
	switch calendar.LeaveKind(kind) {
	case calendar.LeaveVacation:
		return "🏖"
	case calendar.LeaveSick:
		return "🤒"
	default:
		return "📌"
	}
}

func (s *LeaveService) FormatLeaves(periods []models.LeavePeriod) string {
	if len(periods) == 0 {
		return "📭 No leave recorded."
	}
	var lines []string
	lines = append(lines, "📋 Your leave:", "")
	for _, p := range periods {
		line := fmt.Sprintf("%s #%d %s %s", leaveEmoji(p.Kind), p.ID, p.Kind, p.StartDate.Format("02.01.2006"))
		if p.Days() > 1 {
			line += " - " + p.EndDate.Format("02.01.2006")
		}
		line += fmt.Sprintf(" (%d d, %s)", p.Days(), p.Source)
		if p.Description != "" {
			line += " " + p.Description
		} else if p.TypeName != "" {
			line += " " + p.TypeName
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
