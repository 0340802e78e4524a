package api

import (
	"time"

	"github.com/shopspring/decimal"

	"worktime-bot/internal/report"
)

const dateLayout = "2006-01-02"

type reportDTO struct {
	ID          string    `json:"id"`
	Person      string    `json:"person"`
	Region      string    `json:"region"`
	Schedule    string    `json:"schedule"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	Mode        string    `json:"mode"`
	Expected    float64   `json:"expected_hours"`
	Actual      float64   `json:"actual_hours"`
	Difference  float64   `json:"difference_hours"`
	Remaining   float64   `json:"remaining_hours"`
	Status      string    `json:"status"`
	CarryOver   float64   `json:"carry_over_hours"`
	Balance     float64   `json:"balance_hours"`
	Days        []dayDTO  `json:"days"`
	Weeks       []weekDTO `json:"weeks"`
	Items       []itemDTO `json:"items"`
	Skipped     []string  `json:"skipped"`
	GeneratedAt time.Time `json:"generated_at"`
}

type dayDTO struct {
	Date           string  `json:"date"`
	Classification string  `json:"classification"`
	Expected       float64 `json:"expected_hours"`
	Actual         float64 `json:"actual_hours"`
	Difference     float64 `json:"difference_hours"`
}

type weekDTO struct {
	Year       int     `json:"year"`
	Week       int     `json:"week"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Partial    bool    `json:"partial"`
	Expected   float64 `json:"expected_hours"`
	Actual     float64 `json:"actual_hours"`
	Difference float64 `json:"difference_hours"`
}

type itemDTO struct {
	Date        string  `json:"date"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	HoursImpact float64 `json:"hours_impact"`
}

func hours(d decimal.Decimal) float64 {
	f, _ := d.Round(4).Float64()
	return f
}

func newReportDTO(r *report.Report) reportDTO {
	dto := reportDTO{
		ID:          r.ID.String(),
		Person:      r.Person,
		Region:      r.Region,
		Schedule:    r.Schedule.Name,
		Start:       r.Range.Start.Format(dateLayout),
		End:         r.Range.End.Format(dateLayout),
		Mode:        string(r.Range.Mode),
		Expected:    hours(r.Overall.Expected),
		Actual:      hours(r.Overall.Actual),
		Difference:  hours(r.Overall.Difference),
		Remaining:   hours(r.Overall.Remaining()),
		Status:      string(r.Overall.Status()),
		CarryOver:   hours(r.CarryOver),
		Balance:     hours(r.Balance),
		Days:        make([]dayDTO, 0, len(r.Days)),
		Weeks:       make([]weekDTO, 0, len(r.Weeks)),
		Items:       make([]itemDTO, 0, len(r.Items)),
		Skipped:     make([]string, 0, len(r.Skipped)),
		GeneratedAt: r.GeneratedAt,
	}
	for _, d := range r.Days {
		dto.Days = append(dto.Days, dayDTO{
			Date:           d.Date.Format(dateLayout),
			Classification: string(d.Classification),
			Expected:       hours(d.Expected),
			Actual:         hours(d.Actual),
			Difference:     hours(d.Difference),
		})
	}
	for _, w := range r.Weeks {
		dto.Weeks = append(dto.Weeks, weekDTO{
			Year:       w.Year,
			Week:       w.Week,
			Start:      w.Start.Format(dateLayout),
			End:        w.End.Format(dateLayout),
			Partial:    w.Partial,
			Expected:   hours(w.Totals.Expected),
			Actual:     hours(w.Totals.Actual),
			Difference: hours(w.Totals.Difference),
		})
	}
	for _, it := range r.Items {
		dto.Items = append(dto.Items, itemDTO{
			Date:        it.Date.Format(dateLayout),
			Kind:        string(it.Kind),
			Description: it.Description,
			HoursImpact: hours(it.HoursImpact),
		})
	}
	for _, s := range r.Skipped {
		dto.Skipped = append(dto.Skipped, s.String())
	}
	return dto
}
