package render

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"worktime-bot/internal/reconcile"
	"worktime-bot/internal/report"
)

type rgb struct{ r, g, b int }

var (
	colorExpected = rgb{160, 160, 160}
	colorActual   = rgb{68, 114, 196}
	colorHoliday  = rgb{112, 173, 71}
	colorLeave    = rgb{237, 125, 49}
	colorAxis     = rgb{60, 60, 60}
	colorHeader   = rgb{217, 225, 242}
)

func (c rgb) fill(pdf *gofpdf.Fpdf) { pdf.SetFillColor(c.r, c.g, c.b) }
func (c rgb) draw(pdf *gofpdf.Fpdf) { pdf.SetDrawColor(c.r, c.g, c.b) }

func float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// PDF writes a report with a summary, a week table, a daily bar chart of
// expected against actual hours and the cumulative lines.
func PDF(w io.Writer, r *report.Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Work times "+Title(r)), false)
	pdf.SetAuthor("worktime-bot", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Work times "+Title(r)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	rows := [][2]string{
		{"Period", fmt.Sprintf("%s - %s", r.Range.Start.Format(dateLayout), r.Range.End.Format(dateLayout))},
		{"Schedule", fmt.Sprintf("%s (%s)", r.Schedule.Name, r.Schedule.String())},
		{"Region", r.Region},
		{"Expected", report.FormatHours(r.Overall.Expected)},
		{"Worked", report.FormatHours(r.Overall.Actual)},
		{"Difference", report.FormatSigned(r.Overall.Difference)},
		{"Status", StatusLabel(r.Overall.Status())},
		{"Remaining", report.FormatHours(r.Overall.Remaining())},
	}
	if !r.CarryOver.IsZero() {
		rows = append(rows,
			[2]string{"Carry-over", report.FormatSigned(r.CarryOver)},
			[2]string{"Balance", report.FormatSigned(r.Balance)})
	}
	for _, row := range rows {
		pdf.Cell(40, 7, tr(row[0]))
		pdf.Cell(0, 7, tr(row[1]))
		pdf.Ln(7)
	}
	pdf.Ln(4)

	weekTable(pdf, tr, r)
	pdf.Ln(6)
	itemList(pdf, tr, r)

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Daily hours")
	pdf.Ln(10)
	dailyBars(pdf, r, 15, pdf.GetY(), 180, 90)

	pdf.SetY(pdf.GetY() + 100)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Cumulative hours")
	pdf.Ln(10)
	cumulativeLines(pdf, r, 15, pdf.GetY(), 180, 90)

	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 10, fmt.Sprintf("Generated %s, report %s", r.GeneratedAt.Format("02.01.2006 15:04"), r.ID))

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func weekTable(pdf *gofpdf.Fpdf, tr func(string) string, r *report.Report) {
	header := []string{"Week", "From", "To", "Expected", "Worked", "Difference"}
	widths := []float64{20, 28, 28, 34, 34, 34}

	pdf.SetFont("Arial", "B", 10)
	colorHeader.fill(pdf)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, w := range r.Weeks {
		label := fmt.Sprintf("W%02d", w.Week)
		if w.Partial {
			label += "*"
		}
		cells := []string{
			label,
			w.Start.Format(dateLayout),
			w.End.Format(dateLayout),
			report.FormatHours(w.Totals.Expected),
			report.FormatHours(w.Totals.Actual),
			report.FormatSigned(w.Totals.Difference),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 5, "* partial week")
	pdf.Ln(5)
}

func itemList(pdf *gofpdf.Fpdf, tr func(string) string, r *report.Report) {
	if len(r.Items) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "Holidays, leave and half days")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, it := range r.Items {
		line := fmt.Sprintf("%s  %s  %s", it.Date.Format(dateLayout), it.Kind, it.Description)
		if !it.HoursImpact.IsZero() {
			line += "  (-" + report.FormatHours(it.HoursImpact) + ")"
		}
		pdf.Cell(0, 5, tr(line))
		pdf.Ln(5)
	}
}

func maxHours(r *report.Report) float64 {
	top := 8.0
	for _, d := range r.Days {
		top = max(top, float(d.Expected), float(d.Actual), float(d.BaseExpected))
	}
	return top
}

func dailyBars(pdf *gofpdf.Fpdf, r *report.Report, x, y, w, h float64) {
	n := len(r.Days)
	if n == 0 {
		return
	}
	top := maxHours(r)
	slot := w / float64(n)
	bar := slot * 0.4

	colorAxis.draw(pdf)
	pdf.Line(x, y+h, x+w, y+h)
	pdf.Line(x, y, x, y+h)
	pdf.SetFont("Arial", "", 6)

	for i, d := range r.Days {
		left := x + float64(i)*slot + slot*0.1

		exp := float(d.Expected) / top * h
		expColor := colorExpected
		switch d.Classification {
		case reconcile.Holiday:
			expColor = colorHoliday
			exp = float(d.BaseExpected) / top * h
		case reconcile.Leave:
			expColor = colorLeave
			exp = float(d.BaseExpected) / top * h
		}
		if exp > 0 {
			expColor.fill(pdf)
			pdf.Rect(left, y+h-exp, bar, exp, "F")
		}

		act := float(d.Actual) / top * h
		if act > 0 {
			colorActual.fill(pdf)
			pdf.Rect(left+bar, y+h-act, bar, act, "F")
		}

		if n <= 31 {
			pdf.Text(left, y+h+3, d.Date.Format("02"))
		}
	}

	legend(pdf, x, y+h+6, []legendEntry{
		{"expected", colorExpected},
		{"worked", colorActual},
		{"holiday", colorHoliday},
		{"leave", colorLeave},
	})
}

func cumulativeLines(pdf *gofpdf.Fpdf, r *report.Report, x, y, w, h float64) {
	n := len(r.Cumulative)
	if n == 0 {
		return
	}
	top := 1.0
	for _, p := range r.Cumulative {
		top = max(top, float(p.Expected), float(p.Actual))
	}
	step := w
	if n > 1 {
		step = w / float64(n-1)
	}

	colorAxis.draw(pdf)
	pdf.SetLineWidth(0.2)
	pdf.Line(x, y+h, x+w, y+h)
	pdf.Line(x, y, x, y+h)
	pdf.SetFont("Arial", "", 7)
	pdf.Text(x-10, y+2, fmt.Sprintf("%.0fh", top))

	series := func(c rgb, value func(report.CumulativePoint) float64) {
		c.draw(pdf)
		pdf.SetLineWidth(0.6)
		prevX, prevY := x, y+h
		for i, p := range r.Cumulative {
			px := x + float64(i)*step
			py := y + h - value(p)/top*h
			if i > 0 {
				pdf.Line(prevX, prevY, px, py)
			}
			prevX, prevY = px, py
		}
	}
	series(colorExpected, func(p report.CumulativePoint) float64 { return float(p.Expected) })
	series(colorActual, func(p report.CumulativePoint) float64 { return float(p.Actual) })
	pdf.SetLineWidth(0.2)

	legend(pdf, x, y+h+6, []legendEntry{
		{"expected", colorExpected},
		{"worked", colorActual},
	})
}

type legendEntry struct {
	label string
	color rgb
}

func legend(pdf *gofpdf.Fpdf, x, y float64, entries []legendEntry) {
	pdf.SetFont("Arial", "", 8)
	for _, e := range entries {
		e.color.fill(pdf)
		pdf.Rect(x, y-2.5, 3, 3, "F")
		pdf.Text(x+4, y, e.label)
		x += 25
	}
}
