package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"worktime-bot/internal/daterange"
	"worktime-bot/internal/render"
	"worktime-bot/internal/report"
)

type reportHandler struct {
	users   UserFinder
	reports ReportGenerator
	logger  logrus.FieldLogger
}

// Report serves GET /api/users/{chatID}/report. The range comes from one of
// week=1, month=1, custom=YYYY-MM or start=&end=; format is json, pdf or
// xlsx; sync=1 refreshes Odoo data first.
func (h *reportHandler) Report(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid_chat_id", "chat id must be a number")
		return
	}

	opts, err := rangeOptions(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	if err := opts.Validate(); err != nil {
		handleError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "pdf", "xlsx":
	default:
		fail(w, http.StatusBadRequest, "invalid_format", "format must be json, pdf or xlsx")
		return
	}

	user, err := h.users.GetUser(chatID)
	if err != nil {
		handleError(w, err)
		return
	}

	var rep *report.Report
	if flag(r, "sync") {
		rep, _, err = h.reports.SyncAndGenerate(r.Context(), user, opts)
	} else {
		rep, err = h.reports.Generate(r.Context(), user, opts)
	}
	if err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Report request failed")
		handleError(w, err)
		return
	}

	switch format {
	case "pdf":
		h.file(w, rep, "application/pdf", ".pdf", render.PDF)
	case "xlsx":
		h.file(w, rep, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx", render.XLSX)
	default:
		success(w, newReportDTO(rep))
	}
}

func (h *reportHandler) file(w http.ResponseWriter, rep *report.Report, contentType, ext string,
	write func(io.Writer, *report.Report) error) {
	var buf bytes.Buffer
	if err := write(&buf, rep); err != nil {
		h.logger.WithError(err).Error("Failed to render report file")
		handleError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, render.FileName(rep), ext))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func flag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

func rangeOptions(r *http.Request) (daterange.Options, error) {
	q := r.URL.Query()
	opts := daterange.Options{
		CustomMonth: q.Get("custom"),
		Start:       q.Get("start"),
		End:         q.Get("end"),
	}
	for _, name := range []string{"week", "month"} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("%s must be a boolean", name)
		}
		if name == "week" {
			opts.Week = v
		} else {
			opts.Month = v
		}
	}
	return opts, nil
}
