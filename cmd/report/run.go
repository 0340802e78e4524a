package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"worktime-bot/internal/calendar"
	"worktime-bot/internal/config"
	"worktime-bot/internal/daterange"
	"worktime-bot/internal/models"
	"worktime-bot/internal/reconcile"
	"worktime-bot/internal/render"
	"worktime-bot/internal/report"
	"worktime-bot/internal/schedule"
	"worktime-bot/internal/service"
	"worktime-bot/pkg/holidays"
	"worktime-bot/pkg/odoo"
)

const person = "cli"

type options struct {
	attendanceFile   string
	leaveFile        string
	previousOvertime float64
	start, end       string
	week, month      bool
	custom           string
	region           string
	schedule         string
	holidays         string
	calendarFile     string
	out              string
	xlsx             bool
	envFile          string

	// now is the anchor for week and month; zero means time.Now.
	now time.Time
}

func (o options) rangeOptions() daterange.Options {
	return daterange.Options{Week: o.week, Month: o.month, CustomMonth: o.custom, Start: o.start, End: o.end}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	loc := cfg.Location

	sched, err := parseSchedule(opts.schedule)
	if err != nil {
		return err
	}

	now := opts.now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(loc)
	rng, err := daterange.Resolve(opts.rangeOptions(), now, sched.WeekStart)
	if err != nil {
		return err
	}

	region := strings.ToUpper(opts.region)
	if region == "" {
		region = cfg.DefaultRegion
	}
	if !holidays.ValidRegion(region) {
		return fmt.Errorf("unknown region %q, use one of %s", region, strings.Join(holidays.RegionCodes(), ", "))
	}

	calendarFile := opts.calendarFile
	if calendarFile == "" {
		calendarFile = cfg.CalendarFile
	}
	calCfg, err := config.LoadCalendar(calendarFile)
	if err != nil {
		return err
	}

	attXLSX, leaveXLSX, err := loadExports(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}

	rows, bad, err := odoo.ParseAttendance(bytes.NewReader(attXLSX), loc, now)
	if err != nil {
		return fmt.Errorf("parse attendance: %w", err)
	}
	leaves, badLeaves, err := odoo.ParseLeaves(bytes.NewReader(leaveXLSX), loc)
	if err != nil {
		return fmt.Errorf("parse leaves: %w", err)
	}
	for _, e := range append(bad, badLeaves...) {
		logger.WithError(e).Warn("Skipping export row")
	}

	store := calendar.NewStore(loc)
	if err := addHolidays(ctx, store, cfg, opts.holidays, rng, logger); err != nil {
		return err
	}
	periods, unmapped := service.LeavePeriods(leaves, calCfg.KindMapper())
	for _, name := range unmapped {
		logger.WithField("type", name).Warn("Ignoring leave of unknown type")
	}
	for _, p := range periods {
		store.AddLeavePeriod(person, calendar.LeaveKind(p.Kind), models.LocalDate(p.StartDate, loc), models.LocalDate(p.EndDate, loc), leaveDescription(p.Description, p.TypeName))
	}
	calCfg.ApplyHalfDays(store, cfg.HalfDayMode)

	engine := reconcile.NewEngine(reconcile.WithLocation(loc), reconcile.WithLogger(logger))
	rep, err := report.Reconcile(rng, sched, store.For(region, person), service.AttendanceIntervals(rows),
		report.WithPerson(person),
		report.WithRegion(region),
		report.WithCarryOver(decimal.NewFromFloat(opts.previousOvertime)),
		report.WithClock(func() time.Time { return now }),
		report.WithEngine(engine),
	)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	files := []struct {
		ext   string
		write func(io.Writer, *report.Report) error
	}{{".pdf", render.PDF}}
	if opts.xlsx {
		files = append(files, struct {
			ext   string
			write func(io.Writer, *report.Report) error
		}{".xlsx", render.XLSX})
	}
	for _, f := range files {
		path := filepath.Join(opts.out, render.FileName(rep)+f.ext)
		if err := writeFile(path, rep, f.write); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s\n", path)
	}

	fmt.Fprint(stdout, render.Status(rep))
	fmt.Fprintf(stdout, "expected %s, worked %s, remaining %s\n",
		report.FormatHours(rep.Overall.Expected),
		report.FormatHours(rep.Overall.Actual),
		report.FormatHours(rep.Overall.Remaining()))
	return nil
}

func parseSchedule(value string) (schedule.Schedule, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(schedule.KindFullTime):
		return schedule.FullTime(), nil
	case string(schedule.KindPartTime):
		return schedule.PartTime(), nil
	default:
		return service.ParseCustomSchedule(value)
	}
}

func leaveDescription(description, typeName string) string {
	if description != "" {
		return description
	}
	return typeName
}

// loadExports reads both export files, or pulls them from Odoo.
func loadExports(ctx context.Context, cfg *config.BotConfig, opts options, logger *logrus.Logger) (att, leave []byte, err error) {
	if opts.attendanceFile != "" || opts.leaveFile != "" {
		if opts.attendanceFile == "" || opts.leaveFile == "" {
			return nil, nil, errors.New("--attendance-file and --leave-file must be given together")
		}
		if att, err = os.ReadFile(opts.attendanceFile); err != nil {
			return nil, nil, err
		}
		if leave, err = os.ReadFile(opts.leaveFile); err != nil {
			return nil, nil, err
		}
		return att, leave, nil
	}

	if cfg.OdooBaseURL == "" {
		return nil, nil, errors.New("no export files given and ODOO_BASE_URL is not set")
	}
	creds := odoo.Credentials{
		SessionID: os.Getenv("ODOO_SESSION_ID"),
		CSRFToken: os.Getenv("ODOO_CSRF_TOKEN"),
		UID:       os.Getenv("ODOO_UID"),
	}
	client := odoo.NewClient(cfg.OdooBaseURL,
		odoo.WithTimezone(cfg.Timezone),
		odoo.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}),
		odoo.WithLogger(logger),
	)
	if att, err = client.ExportAttendance(ctx, creds); err != nil {
		return nil, nil, fmt.Errorf("export attendance: %w", err)
	}
	if leave, err = client.ExportLeaves(ctx, creds); err != nil {
		return nil, nil, fmt.Errorf("export leaves: %w", err)
	}
	return att, leave, nil
}

// addHolidays loads an ICS file or URL for the years the range touches.
func addHolidays(ctx context.Context, store *calendar.Store, cfg *config.BotConfig, source string, rng daterange.Range, logger *logrus.Logger) error {
	if source == "" {
		source = cfg.HolidaysICSURL
	}
	if source == "" {
		logger.Warn("No holiday source configured, every weekday counts as a working day")
		return nil
	}

	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err := holidays.Fetch(ctx, &http.Client{Timeout: cfg.FetchTimeout}, source)
		if err != nil {
			return err
		}
		r = body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("open holidays: %w", err)
		}
		r = f
	}
	defer r.Close()

	parsed, skipped, err := holidays.Parse(r, store.Location(), holidays.YearsBetween(rng.Start, rng.End)...)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		logger.WithField("event", s).Warn("Skipping holiday event")
	}
	for _, h := range parsed {
		for _, region := range h.Regions {
			store.AddHoliday(calendar.HolidayFact{Date: h.Date, Region: region, Description: h.Name})
		}
	}
	return nil
}

func writeFile(path string, rep *report.Report, write func(io.Writer, *report.Report) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, rep); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
