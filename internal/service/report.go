package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"worktime-bot/internal/calendar"
	"worktime-bot/internal/daterange"
	"worktime-bot/internal/models"
	"worktime-bot/internal/reconcile"
	"worktime-bot/internal/report"
)

// ReportService gathers a user's stored facts and runs the reconciliation.
type ReportService struct {
	schedules *WorkScheduleService
	holidays  *HolidayService
	leaves    *LeaveService
	halfDays  *HalfDayService
	sync      *SyncService
	balances  *MonthlyBalanceService
	loc       *time.Location
	now       func() time.Time
	logger    *logrus.Logger
}

func NewReportService(
	schedules *WorkScheduleService,
	holidays *HolidayService,
	leaves *LeaveService,
	halfDays *HalfDayService,
	sync *SyncService,
	balances *MonthlyBalanceService,
	loc *time.Location,
) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{
		schedules: schedules,
		holidays:  holidays,
		leaves:    leaves,
		halfDays:  halfDays,
		sync:      sync,
		balances:  balances,
		loc:       loc,
		now:       time.Now,
		logger:    newLogger(),
	}
}

// Generate builds the report for the range selected by opts, anchored at
// today in the configured location. Month-aligned reports also refresh the
// monthly balance snapshot.
func (s *ReportService) Generate(ctx context.Context, user *models.User, opts daterange.Options) (*report.Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	sched, err := s.schedules.GetSchedule(user)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	rng, err := daterange.Resolve(opts, now, sched.WeekStart)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.holidays.EnsureYears(ctx, rng.Start, rng.End); err != nil {
		return nil, err
	}
	store := calendar.NewStore(s.loc)
	if err := s.holidays.Fill(store, rng.Start, rng.End, user.Region); err != nil {
		return nil, err
	}
	if err := s.leaves.Fill(store, user, rng.Start, rng.End); err != nil {
		return nil, err
	}
	if err := s.halfDays.Fill(store, rng.Start, rng.End); err != nil {
		return nil, err
	}
	intervals, err := s.sync.Intervals(user, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}

	engine := reconcile.NewEngine(
		reconcile.WithLocation(s.loc),
		reconcile.WithLogger(s.logger.WithField("chat_id", user.ChatID)),
	)
	rep, err := report.Reconcile(rng, sched, store.For(user.Region, user.Identity()), intervals,
		report.WithCarryOver(user.CarryOver),
		report.WithClock(func() time.Time { return now }),
		report.WithEngine(engine),
	)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	if _, err := s.balances.Record(user, rep); err != nil {
		s.logger.WithError(err).Warn("Failed to record monthly balance")
	}

	s.logger.WithFields(logrus.Fields{
		"chat_id":  user.ChatID,
		"range":    rng.String(),
		"expected": rep.Overall.Expected.StringFixed(2),
		"actual":   rep.Overall.Actual.StringFixed(2),
		"skipped":  len(rep.Skipped),
	}).Info("Report generated")
	return rep, nil
}

// SyncAndGenerate refreshes the user's Odoo data first when possible.
// A user without credentials gets a report from stored data only.
func (s *ReportService) SyncAndGenerate(ctx context.Context, user *models.User, opts daterange.Options) (*report.Report, *SyncResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	var synced *SyncResult
	if s.sync.Enabled() && user.HasCredentials() {
		res, err := s.sync.Sync(ctx, user)
		if err != nil {
			return nil, nil, err
		}
		synced = res
	}
	rep, err := s.Generate(ctx, user, opts)
	return rep, synced, err
}
