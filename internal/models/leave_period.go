package models

import "time"

// LeavePeriod is an inclusive range of leave days for one user. Kind is
// one of vacation, sick or special.
type LeavePeriod struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	StartDate   time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time `gorm:"type:date;not null" json:"end_date"`
	Kind        string    `gorm:"type:varchar(20);not null" json:"kind"`
	TypeName    string    `json:"type_name"`
	Description string    `json:"description"`
	Source      string    `gorm:"type:varchar(20);not null;default:'manual';index" json:"source"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (LeavePeriod) TableName() string {
	return "leave_periods"
}

// Days is the number of calendar days covered.
func (l *LeavePeriod) Days() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24+0.5) + 1
}

func (l *LeavePeriod) IsValid() bool {
	return !l.StartDate.IsZero() && !l.EndDate.Before(l.StartDate)
}
