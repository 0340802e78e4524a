package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"worktime-bot/internal/schedule"
)

// WorkSchedule stores one user's expected hours per weekday.
type WorkSchedule struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Kind      string          `gorm:"type:varchar(20);not null;default:'full_time'" json:"kind"`
	Monday    decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"monday"`
	Tuesday   decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"tuesday"`
	Wednesday decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"wednesday"`
	Thursday  decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"thursday"`
	Friday    decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"friday"`
	Saturday  decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"saturday"`
	Sunday    decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"sunday"`
	WeekStart int             `gorm:"not null;default:1" json:"week_start"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WorkSchedule) TableName() string {
	return "work_schedules"
}

// ToSchedule converts the row into the domain schedule.
func (ws *WorkSchedule) ToSchedule() schedule.Schedule {
	s := schedule.Schedule{
		Name:      kindName(ws.Kind),
		Kind:      schedule.Kind(ws.Kind),
		WeekStart: time.Weekday(ws.WeekStart),
	}
	s.Hours[time.Sunday] = ws.Sunday
	s.Hours[time.Monday] = ws.Monday
	s.Hours[time.Tuesday] = ws.Tuesday
	s.Hours[time.Wednesday] = ws.Wednesday
	s.Hours[time.Thursday] = ws.Thursday
	s.Hours[time.Friday] = ws.Friday
	s.Hours[time.Saturday] = ws.Saturday
	return s
}

// SetSchedule copies the domain schedule into the row.
func (ws *WorkSchedule) SetSchedule(s schedule.Schedule) {
	ws.Kind = string(s.Kind)
	ws.WeekStart = int(s.WeekStart)
	ws.Sunday = s.Hours[time.Sunday]
	ws.Monday = s.Hours[time.Monday]
	ws.Tuesday = s.Hours[time.Tuesday]
	ws.Wednesday = s.Hours[time.Wednesday]
	ws.Thursday = s.Hours[time.Thursday]
	ws.Friday = s.Hours[time.Friday]
	ws.Saturday = s.Hours[time.Saturday]
}

// IsValid checks every weekday is within a day.
func (ws *WorkSchedule) IsValid() bool {
	if ws.WeekStart < 0 || ws.WeekStart > 6 {
		return false
	}
	return ws.ToSchedule().Validate() == nil
}

func kindName(kind string) string {
	switch schedule.Kind(kind) {
	case schedule.KindFullTime:
		return "Full-time"
	case schedule.KindPartTime:
		return "Part-time"
	default:
		return "Custom"
	}
}

// PersonKey is the identity string for a Telegram chat.
func PersonKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
