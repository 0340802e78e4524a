package handler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"worktime-bot/internal/daterange"
	"worktime-bot/internal/schedule"
	"worktime-bot/internal/service"
	"worktime-bot/pkg/holidays"
	"worktime-bot/pkg/odoo"
)

const (
	callbackConfirmDelete    = "confirm_delete"
	callbackCancelDelete     = "cancel_delete"
	callbackClearCredentials = "clear_credentials"
	callbackReportPrefix     = "report:"

	stateAwaitingCredentials    = "awaiting_credentials"
	stateAwaitingCustomSchedule = "awaiting_custom_schedule"
)

const (
	formatSummary = "summary"
	formatStatus  = "status"
	formatPDF     = "pdf"
	formatXLSX    = "xlsx"
)

var (
	monthToken = regexp.MustCompile(`^\d{4}-\d{1,2}$`)
	dateToken  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var dateLayouts = []string{"02.01.2006", "2006-01-02", "02-01-2006", "02.01"}

// parseDate accepts DD.MM.YYYY, YYYY-MM-DD, DD-MM-YYYY and DD.MM (current year).
func parseDate(s string, now time.Time) (time.Time, error) {
	loc := now.Location()
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if !strings.Contains(layout, "2006") {
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use DD.MM.YYYY or YYYY-MM-DD", s)
}

// parseDateRange reads "start [end] [description...]". A missing end means
// a single day.
func parseDateRange(args string, now time.Time) (start, end time.Time, description string, err error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return start, end, "", errors.New("a start date is required")
	}
	start, err = parseDate(fields[0], now)
	if err != nil {
		return start, end, "", err
	}
	end = start
	rest := fields[1:]
	if len(rest) > 0 {
		if t, perr := parseDate(rest[0], now); perr == nil {
			end = t
			rest = rest[1:]
		}
	}
	if end.Before(start) {
		return start, end, "", errors.New("the end date is before the start date")
	}
	return start, end, strings.Join(rest, " "), nil
}

// reportOptions maps chat arguments onto range options: "week", "month",
// "YYYY-MM" or two dates. No arguments select the current month.
func reportOptions(args string) (daterange.Options, error) {
	var opts daterange.Options
	var dates []string
	for _, tok := range strings.Fields(strings.ToLower(args)) {
		switch {
		case tok == "week":
			opts.Week = true
		case tok == "month":
			opts.Month = true
		case monthToken.MatchString(tok):
			if opts.CustomMonth != "" {
				return opts, fmt.Errorf("only one month may be given, got %s and %s", opts.CustomMonth, tok)
			}
			opts.CustomMonth = tok
		case dateToken.MatchString(tok):
			dates = append(dates, tok)
		default:
			return opts, fmt.Errorf("unknown argument %q", tok)
		}
	}
	switch len(dates) {
	case 0:
	case 2:
		opts.Start, opts.End = dates[0], dates[1]
	default:
		return opts, errors.New("a date range needs a start and an end date (YYYY-MM-DD YYYY-MM-DD)")
	}
	if len(opts.Selected()) == 0 {
		opts.Month = true
	}
	return opts, opts.Validate()
}

func reportCallbackData(format, args string) string {
	return callbackReportPrefix + format + ":" + args
}

func parseReportCallback(data string) (format, args string) {
	rest := strings.TrimPrefix(data, callbackReportPrefix)
	format, args, _ = strings.Cut(rest, ":")
	return format, args
}

// parseCredentials reads "session_id csrf_token uid".
func parseCredentials(args string) (odoo.Credentials, error) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return odoo.Credentials{}, errors.New("send exactly three values: session_id csrf_token uid")
	}
	creds := odoo.Credentials{SessionID: fields[0], CSRFToken: fields[1], UID: fields[2]}
	return creds, creds.Validate()
}

// errorText turns a service error into the chat answer.
func errorText(err error) string {
	var unknown *schedule.UnknownScheduleError
	var httpErr *odoo.HTTPError
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return "❌ Profile not found. Use /start to register."
	case errors.As(err, &unknown):
		return "📅 You haven't set your work schedule yet. Use /work_schedule full_time, part_time or custom."
	case errors.Is(err, service.ErrNoCredentials):
		return "🔑 No Odoo credentials stored. Use /credentials session_id csrf_token uid."
	case errors.Is(err, odoo.ErrUnauthorized), errors.Is(err, odoo.ErrNotSpreadsheet):
		return "🔑 Your Odoo session expired. Update it with /credentials."
	case errors.Is(err, odoo.ErrInvalidCredentials):
		return "🔑 " + err.Error()
	case errors.As(err, &httpErr):
		return "🌐 Odoo answered with an error: " + httpErr.Error()
	case errors.Is(err, daterange.ErrConflictingOptions), errors.Is(err, daterange.ErrInvalidRange):
		return "⚠️ " + err.Error()
	case errors.Is(err, service.ErrAccessDenied):
		return "❌ Access denied. This command is for admins only."
	case errors.Is(err, service.ErrInvalidRegion):
		return "❌ " + err.Error() + ". Use /region to list the codes."
	case errors.Is(err, service.ErrNotConfigured):
		return "⚙️ Not available on this bot: " + err.Error()
	case errors.Is(err, service.ErrLeaveOverlap), errors.Is(err, service.ErrInvalidArgument):
		return "❌ " + err.Error()
	case errors.Is(err, holidays.ErrFeedUnavailable):
		return "🗓️ Holidays for this range could not be loaded, so no report was built. Try again later."
	case errors.Is(err, context.DeadlineExceeded):
		return "⌛ The request timed out, try again later."
	default:
		return "❌ Something went wrong: " + err.Error()
	}
}

func formatSyncResult(res *service.SyncResult) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🔄 Synced %d attendance entries and %d leave periods from Odoo.", res.Attendance, res.Leaves)
	if res.Open > 0 {
		fmt.Fprintf(&b, "\n⏱️ %d open check-ins are counted until now.", res.Open)
	}
	if len(res.Unmapped) > 0 {
		fmt.Fprintf(&b, "\n❓ Unknown leave types ignored: %s", strings.Join(res.Unmapped, ", "))
	}
	if len(res.RowErrors) > 0 {
		fmt.Fprintf(&b, "\n⚠️ %d rows could not be read.", len(res.RowErrors))
	}
	return b.String()
}
