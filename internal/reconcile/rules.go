package reconcile

import (
	"github.com/shopspring/decimal"

	"worktime-bot/internal/calendar"
)

type Classification string

const (
	Working Classification = "working"
	Weekend Classification = "weekend"
	Holiday Classification = "holiday"
	Leave   Classification = "leave"
	HalfDay Classification = "half-day"
)

// DayFacts is what the rules see for a single date.
type DayFacts struct {
	BaseExpected decimal.Decimal
	Holiday      *calendar.HolidayFact
	Leave        *calendar.LeaveFact
	HalfDay      *calendar.HalfDayFact
}

// Rule is one step of the precedence list. The first rule whose Match
// returns true decides the day's classification and expected hours.
type Rule struct {
	Name     string
	Match    func(DayFacts) bool
	Classify func(DayFacts) Classification
	Expected func(DayFacts) decimal.Decimal
}

func zero(DayFacts) decimal.Decimal { return decimal.Zero }

// DefaultRules is leave, holiday, half day, ordinary.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "leave",
			Match:    func(f DayFacts) bool { return f.Leave != nil },
			Classify: func(DayFacts) Classification { return Leave },
			Expected: zero,
		},
		{
			Name:     "holiday",
			Match:    func(f DayFacts) bool { return f.Holiday != nil },
			Classify: func(DayFacts) Classification { return Holiday },
			Expected: zero,
		},
		{
			Name: "half-day",
			// a half day never applies on a leave day, whatever the rule order
			Match:    func(f DayFacts) bool { return f.HalfDay != nil && f.Leave == nil },
			Classify: func(DayFacts) Classification { return HalfDay },
			Expected: func(f DayFacts) decimal.Decimal { return f.HalfDay.Apply(f.BaseExpected) },
		},
		{
			Name:  "ordinary",
			Match: func(DayFacts) bool { return true },
			Classify: func(f DayFacts) Classification {
				if f.BaseExpected.IsPositive() {
					return Working
				}
				return Weekend
			},
			Expected: func(f DayFacts) decimal.Decimal { return f.BaseExpected },
		},
	}
}
