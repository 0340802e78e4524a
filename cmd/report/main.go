package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "worktime-report",
		Short: "Reconcile worked hours against a schedule and write a PDF report",
		Long: `worktime-report compares attendance from Odoo exports with the expected
hours of a schedule, taking public holidays, leave and half days into account.

Without --attendance-file and --leave-file the exports are pulled from Odoo
with ODOO_BASE_URL, ODOO_SESSION_ID, ODOO_CSRF_TOKEN and ODOO_UID.`,
		Example: `  worktime-report --month
  worktime-report -af attendance.xlsx -lf leave.xlsx --custom 2024-12 --xlsx
  worktime-report --start 2024-02-01 --end 2024-02-14 --schedule "Mon=8,Tue=8,Wed=4"`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.attendanceFile, "attendance-file", "a", "", "Odoo attendance export (XLSX); requires --leave-file")
	f.StringVarP(&opts.leaveFile, "leave-file", "l", "", "Odoo leave export (XLSX); requires --attendance-file")
	f.Float64VarP(&opts.previousOvertime, "previous-overtime", "o", 0, "overtime (or negative undertime) carried over from before the range")
	f.StringVarP(&opts.start, "start", "s", "", "first day YYYY-MM-DD; requires --end")
	f.StringVarP(&opts.end, "end", "e", "", "last day YYYY-MM-DD; requires --start")
	f.BoolVarP(&opts.week, "week", "W", false, "report the current week")
	f.BoolVarP(&opts.month, "month", "M", false, "report the current month (default)")
	f.StringVarP(&opts.custom, "custom", "c", "", "report a month given as YYYY-MM")
	f.StringVarP(&opts.region, "region", "r", "", "holiday region code, e.g. BB (default DEFAULT_REGION)")
	f.StringVar(&opts.schedule, "schedule", "full_time", `full_time, part_time or hours per weekday like "Mon=8,Tue=8"`)
	f.StringVar(&opts.holidays, "holidays", "", "holiday ICS file or URL (default HOLIDAYS_ICS_URL)")
	f.StringVar(&opts.calendarFile, "calendar", "", "calendar YAML with half days and leave types (default CALENDAR_FILE)")
	f.StringVar(&opts.out, "out", ".", "directory for the generated files")
	f.BoolVar(&opts.xlsx, "xlsx", false, "also write an XLSX workbook")
	f.StringVar(&opts.envFile, "env-file", "", "load settings from this .env file")

	cmd.MarkFlagsRequiredTogether("attendance-file", "leave-file")

	return cmd
}
