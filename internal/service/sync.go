package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"worktime-bot/internal/calendar"
	"worktime-bot/internal/models"
	"worktime-bot/internal/reconcile"
	"worktime-bot/internal/repository"
	"worktime-bot/pkg/odoo"
)

// Exporter is the part of the Odoo client the sync needs.
type Exporter interface {
	ExportAttendance(ctx context.Context, creds odoo.Credentials) ([]byte, error)
	ExportLeaves(ctx context.Context, creds odoo.Credentials) ([]byte, error)
}

// SyncService pulls attendance and leave exports from Odoo into the database.
type SyncService struct {
	users      *UserService
	leaves     *LeaveService
	attendance repository.AttendanceRepository
	exporter   Exporter
	mapper     calendar.KindMapper
	loc        *time.Location
	now        func() time.Time
	logger     *logrus.Logger
}

// NewSyncService creates the service; exporter may be nil when no Odoo
// instance is configured.
func NewSyncService(
	users *UserService,
	leaves *LeaveService,
	attendance repository.AttendanceRepository,
	exporter Exporter,
	mapper calendar.KindMapper,
	loc *time.Location,
) *SyncService {
	if loc == nil {
		loc = time.Local
	}
	return &SyncService{
		users:      users,
		leaves:     leaves,
		attendance: attendance,
		exporter:   exporter,
		mapper:     mapper,
		loc:        loc,
		now:        time.Now,
		logger:     newLogger(),
	}
}

type SyncResult struct {
	Attendance int
	Open       int
	Leaves     int
	Unmapped   []string
	RowErrors  []error
}

// Enabled reports whether an Odoo instance is configured.
func (s *SyncService) Enabled() bool {
	return s.exporter != nil
}

// Sync downloads both exports for the user and replaces the stored copies.
func (s *SyncService) Sync(ctx context.Context, user *models.User) (*SyncResult, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("%w: ODOO_BASE_URL is not set", ErrNotConfigured)
	}
	creds, err := s.users.Credentials(user)
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{"chat_id": user.ChatID}
	s.logger.WithFields(fields).Info("Syncing attendance and leave")

	attXLSX, err := s.exporter.ExportAttendance(ctx, creds)
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Warn("Attendance export failed")
		return nil, fmt.Errorf("export attendance: %w", err)
	}
	leaveXLSX, err := s.exporter.ExportLeaves(ctx, creds)
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Warn("Leave export failed")
		return nil, fmt.Errorf("export leaves: %w", err)
	}

	result := &SyncResult{}

	rows, bad, err := odoo.ParseAttendance(bytes.NewReader(attXLSX), s.loc, s.now())
	if err != nil {
		return nil, fmt.Errorf("parse attendance: %w", err)
	}
	result.RowErrors = append(result.RowErrors, bad...)
	if err := s.storeAttendance(user, rows); err != nil {
		return nil, err
	}
	result.Attendance = len(rows)
	for _, r := range rows {
		if r.Open {
			result.Open++
		}
	}

	leaves, bad, err := odoo.ParseLeaves(bytes.NewReader(leaveXLSX), s.loc)
	if err != nil {
		return nil, fmt.Errorf("parse leaves: %w", err)
	}
	result.RowErrors = append(result.RowErrors, bad...)
	periods, unmapped := LeavePeriods(leaves, s.mapper)
	if err := s.leaves.ReplaceSynced(user, models.SourceOdoo, periods); err != nil {
		return nil, fmt.Errorf("store leaves: %w", err)
	}
	result.Leaves = len(periods)
	result.Unmapped = unmapped

	fields["attendance"] = result.Attendance
	fields["leaves"] = result.Leaves
	fields["row_errors"] = len(result.RowErrors)
	s.logger.WithFields(fields).Info("Sync finished")
	return result, nil
}

func (s *SyncService) storeAttendance(user *models.User, rows []odoo.Attendance) error {
	if len(rows) == 0 {
		return nil
	}
	first, last := rows[0].CheckIn, rows[0].CheckIn
	out := make([]models.Attendance, 0, len(rows))
	for _, r := range rows {
		if r.CheckIn.Before(first) {
			first = r.CheckIn
		}
		if r.CheckIn.After(last) {
			last = r.CheckIn
		}
		out = append(out, models.Attendance{
			CheckIn:  r.CheckIn,
			CheckOut: r.CheckOut,
			Open:     r.Open,
			Source:   models.SourceOdoo,
		})
	}
	if err := s.attendance.ReplaceInRange(user.ID, first, last, out); err != nil {
		return fmt.Errorf("store attendance: %w", err)
	}
	return nil
}

// Intervals loads the user's stored attendance between start and end as
// engine intervals in the service location.
func (s *SyncService) Intervals(user *models.User, start, end time.Time) ([]reconcile.Interval, error) {
	rows, err := s.attendance.GetInRange(user.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	out := make([]reconcile.Interval, 0, len(rows))
	for _, r := range rows {
		out = append(out, reconcile.Interval{Start: r.CheckIn.In(s.loc), End: r.CheckOut.In(s.loc)})
	}
	return out, nil
}

// LeavePeriods maps export rows to leave periods. Rows whose type matches
// no configured kind are returned by name in unmapped.
func LeavePeriods(leaves []odoo.Leave, mapper calendar.KindMapper) (periods []models.LeavePeriod, unmapped []string) {
	for _, l := range leaves {
		kind, ok := mapper.Map(l.Type)
		if !ok {
			unmapped = append(unmapped, l.Type)
			continue
		}
		periods = append(periods, models.LeavePeriod{
			StartDate:   models.DateKey(l.Start),
			EndDate:     models.DateKey(l.End),
			Kind:        string(kind),
			TypeName:    l.Type,
			Description: l.Description,
			Source:      models.SourceOdoo,
		})
	}
	return periods, unmapped
}

// AttendanceIntervals converts export rows to engine intervals.
func AttendanceIntervals(rows []odoo.Attendance) []reconcile.Interval {
	out := make([]reconcile.Interval, 0, len(rows))
	for _, r := range rows {
		out = append(out, reconcile.Interval{Start: r.CheckIn, End: r.CheckOut})
	}
	return out
}
