package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyBalance is a snapshot of one month's reconciled totals, refreshed
// every time a full-month report is generated.
type MonthlyBalance struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	UserID          uint            `gorm:"not null;uniqueIndex:idx_balance_user_month" json:"user_id"`
	Year            int             `gorm:"not null;uniqueIndex:idx_balance_user_month" json:"year"`
	Month           int             `gorm:"not null;check:month >= 1 AND month <= 12;uniqueIndex:idx_balance_user_month" json:"month"`
	ExpectedHours   decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"expected_hours"`
	ActualHours     decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"actual_hours"`
	DifferenceHours decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"difference_hours"`
	HolidayDays     int             `gorm:"not null;default:0" json:"holiday_days"`
	LeaveDays       int             `gorm:"not null;default:0" json:"leave_days"`
	ReportID        string          `gorm:"type:varchar(36)" json:"report_id"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MonthlyBalance) TableName() string {
	return "monthly_balances"
}

func (mb *MonthlyBalance) IsValid() bool {
	if mb.Year < 2000 || mb.Year > 2100 {
		return false
	}
	if mb.Month < 1 || mb.Month > 12 {
		return false
	}
	if mb.ExpectedHours.IsNegative() || mb.ActualHours.IsNegative() {
		return false
	}
	return true
}

// Recalculate refreshes DifferenceHours from expected and actual.
func (mb *MonthlyBalance) Recalculate() {
	mb.DifferenceHours = mb.ActualHours.Sub(mb.ExpectedHours)
}
