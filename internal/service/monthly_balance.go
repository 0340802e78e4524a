package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"worktime-bot/internal/models"
	"worktime-bot/internal/reconcile"
	"worktime-bot/internal/report"
	"worktime-bot/internal/repository"
)

// MonthlyBalanceService keeps one snapshot per user and month, refreshed
// by every month-aligned report.
type MonthlyBalanceService struct {
	repo   repository.MonthlyBalanceRepository
	logger *logrus.Logger
}

func NewMonthlyBalanceService(repo repository.MonthlyBalanceRepository) *MonthlyBalanceService {
	return &MonthlyBalanceService{repo: repo, logger: newLogger()}
}

// Record stores the totals of rep when it covers exactly one month. It
// reports whether a snapshot was written.
func (s *MonthlyBalanceService) Record(user *models.User, rep *report.Report) (bool, error) {
	if rep.Month == nil || !rep.Range.MonthAligned() {
		return false, nil
	}

	mb := &models.MonthlyBalance{
		UserID:        user.ID,
		Year:          rep.Month.Year,
		Month:         int(rep.Month.Month),
		ExpectedHours: rep.Month.Totals.Expected,
		ActualHours:   rep.Month.Totals.Actual,
		ReportID:      rep.ID.String(),
	}
	for _, d := range rep.Days {
		switch d.Classification {
		case reconcile.Holiday:
			mb.HolidayDays++
		case reconcile.Leave:
			mb.LeaveDays++
		}
	}

	if err := s.repo.Upsert(mb); err != nil {
		return false, fmt.Errorf("save monthly balance: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"chat_id": user.ChatID,
		"year":    mb.Year,
		"month":   mb.Month,
		"diff":    mb.DifferenceHours.StringFixed(2),
	}).Info("Monthly balance recorded")
	return true, nil
}

func (s *MonthlyBalanceService) List(user *models.User) ([]*models.MonthlyBalance, error) {
	return s.repo.GetByUserID(user.ID)
}

// FormatStats lists the snapshots with a running balance that starts at the
// user's carry-over.
func (s *MonthlyBalanceService) FormatStats(user *models.User, all []*models.MonthlyBalance) string {
	if len(all) == 0 {
		return "📭 No monthly balances yet. Generate a /month report first."
	}

	var lines []string
	lines = append(lines, "📈 Monthly balances:", "")
	running := user.CarryOver
	total := decimal.Zero
	for _, mb := range all {
		running = running.Add(mb.DifferenceHours)
		total = total.Add(mb.DifferenceHours)
		lines = append(lines, fmt.Sprintf("%04d-%02d: expected %s, worked %s, %s (balance %s)",
			mb.Year, mb.Month,
			report.FormatHours(mb.ExpectedHours),
			report.FormatHours(mb.ActualHours),
			report.FormatSigned(mb.DifferenceHours),
			report.FormatSigned(running)))
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Sum of months: %s", report.FormatSigned(total)))
	if !user.CarryOver.IsZero() {
		lines = append(lines, fmt.Sprintf("Carry-over: %s", report.FormatSigned(user.CarryOver)))
	}
	return strings.Join(lines, "\n")
}
