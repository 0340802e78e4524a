package models

import (
	"time"
)

const (
	SourceManual = "manual"
	SourceICS    = "ics"
	SourceOdoo   = "odoo"
)

// Holiday is a public holiday for one region ("ALL" for nationwide).
type Holiday struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:idx_holiday_date_region" json:"date"`
	Region      string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_holiday_date_region" json:"region"`
	Year        int       `gorm:"index" json:"year"`
	Description string    `json:"description"`
	Source      string    `gorm:"type:varchar(20);not null;default:'ics'" json:"source"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Holiday) TableName() string {
	return "holidays"
}

// DateKey is the calendar date of t as UTC midnight. Every date column is
// stored this way so range queries compare like with like.
func DateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LocalDate turns a stored date key back into midnight in loc.
func LocalDate(key time.Time, loc *time.Location) time.Time {
	return time.Date(key.Year(), key.Month(), key.Day(), 0, 0, 0, 0, loc)
}
