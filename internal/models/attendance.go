package models

import (
	"fmt"
	"time"
)

// Attendance is one synced check-in/check-out pair.
type Attendance struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	UserID   uint      `gorm:"not null;index;uniqueIndex:idx_attendance_user_checkin" json:"user_id"`
	Date     time.Time `gorm:"type:date;not null;index" json:"date"`
	CheckIn  time.Time `gorm:"not null;uniqueIndex:idx_attendance_user_checkin" json:"check_in"`
	CheckOut time.Time `gorm:"not null" json:"check_out"`
	// Open marks a row whose check-out was missing at sync time.
	Open      bool      `gorm:"not null;default:false" json:"open"`
	Source    string    `gorm:"type:varchar(20);not null;default:'odoo'" json:"source"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// WorkedMinutes is the whole minutes between check-in and check-out.
func (a *Attendance) WorkedMinutes() int {
	if !a.CheckOut.After(a.CheckIn) {
		return 0
	}
	return int(a.CheckOut.Sub(a.CheckIn).Minutes())
}

func (a *Attendance) FormatDuration() string {
	m := a.WorkedMinutes()
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}
