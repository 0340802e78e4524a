// Package render turns a reconciled report into chat text, PDF and XLSX.
// Renderers only read the report; they never reclassify days.
package render

import (
	"fmt"
	"strings"

	"worktime-bot/internal/daterange"
	"worktime-bot/internal/report"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape makes free text safe for Telegram's legacy Markdown.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

const dateLayout = "02.01.2006"

// Title names the report by its range, e.g. "February 2024" or "Week 7/2024".
func Title(r *report.Report) string {
	switch r.Range.Mode {
	case daterange.ModeMonth, daterange.ModeCustomMonth:
		return r.Range.Start.Format("January 2006")
	case daterange.ModeWeek:
		year, week := r.Range.Start.ISOWeek()
		return fmt.Sprintf("Week %d/%d", week, year)
	default:
		return fmt.Sprintf("%s - %s", r.Range.Start.Format(dateLayout), r.Range.End.Format(dateLayout))
	}
}

// Summary is the Markdown chat message for a report.
func Summary(r *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*📊 Time Tracking Summary, %s*\n\n", Title(r))

	status := r.Overall.Status()
	if status == report.Overtime {
		fmt.Fprintf(&b, "✅ *Status:* %s\n", StatusLabel(status))
	} else {
		fmt.Fprintf(&b, "⚠️ *Status:* %s\n", StatusLabel(status))
	}
	fmt.Fprintf(&b, "⏱️ *Difference:* %s\n\n", report.FormatSigned(r.Overall.Difference))

	fmt.Fprintf(&b, "🕒 *Actual Hours Worked:* %s\n", report.FormatHours(r.Overall.Actual))
	fmt.Fprintf(&b, "📆 *Expected Hours:* %s\n", report.FormatHours(r.Overall.Expected))
	fmt.Fprintf(&b, "⏳ *Remaining Hours Needed:* %s\n", report.FormatHours(r.Overall.Remaining()))

	if !r.CarryOver.IsZero() {
		fmt.Fprintf(&b, "➕ *Carry-over:* %s\n", report.FormatSigned(r.CarryOver))
		fmt.Fprintf(&b, "💼 *Balance:* %s (%s)\n", report.FormatSigned(r.Balance), StatusLabel(r.BalanceStatus()))
	}

	b.WriteString("\n*🏖️ Holidays*\n")
	holidays := r.ItemsOf(report.ItemHoliday)
	if len(holidays) == 0 {
		b.WriteString("• No holidays in this period.\n")
	}
	for _, it := range holidays {
		fmt.Fprintf(&b, "• *%s*: %s (%s)\n", it.Date.Format(dateLayout), escape(it.Description), impact(it))
	}

	b.WriteString("\n*🌴 Leaves and Half Days*\n")
	leaves := r.ItemsOf(report.ItemVacation, report.ItemSick, report.ItemSpecial, report.ItemHalfDay, report.ItemHalfDaySkipped)
	if len(leaves) == 0 {
		b.WriteString("• No leaves in this period.\n")
	}
	for _, it := range leaves {
		line := fmt.Sprintf("• *%s*: %s", it.Date.Format(dateLayout), it.Kind)
		if it.Description != "" {
			line += " " + escape(it.Description)
		}
		fmt.Fprintf(&b, "%s (%s)\n", line, impact(it))
	}

	if len(r.Weeks) > 1 || r.Range.Mode != daterange.ModeWeek {
		b.WriteString("\n*📅 Weekly Hours*\n")
		for _, w := range r.Weeks {
			fmt.Fprintf(&b, "• W%02d %s-%s: %s of %s (%s)",
				w.Week, w.Start.Format("02.01"), w.End.Format("02.01"),
				report.FormatHours(w.Totals.Actual), report.FormatHours(w.Totals.Expected),
				report.FormatSigned(w.Totals.Difference))
			if w.Partial {
				fmt.Fprintf(&b, " _partial week, %d days_", w.Days)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "\n⚠️ %d input entries were ignored, see /status for details.\n", len(r.Skipped))
	}
	return b.String()
}

// StatusLabel capitalises a status for display.
func StatusLabel(s report.Status) string {
	if s == report.Overtime {
		return "Overtime"
	}
	return "Undertime"
}

func impact(it report.Item) string {
	if it.HoursImpact.IsZero() {
		return "no change"
	}
	return "-" + report.FormatHours(it.HoursImpact) + " expected"
}

// Status is a short plain text status line with the skipped inputs listed.
func Status(r *report.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s, difference %s", Title(r), StatusLabel(r.Overall.Status()), report.FormatSigned(r.Overall.Difference))
	if !r.CarryOver.IsZero() {
		fmt.Fprintf(&b, ", balance %s", report.FormatSigned(r.Balance))
	}
	b.WriteString("\n")
	for _, s := range r.Skipped {
		fmt.Fprintf(&b, "ignored %s\n", s.String())
	}
	return b.String()
}

// FileName is the base name used for exported files, e.g. "worktimes-2024-02".
func FileName(r *report.Report) string {
	return "worktimes-" + r.Range.Label()
}
