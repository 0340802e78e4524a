package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HalfDay reduces the expectation of one date for everyone.
type HalfDay struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Date        time.Time       `gorm:"type:date;uniqueIndex;not null" json:"date"`
	Mode        string          `gorm:"type:varchar(10);not null;default:'fraction'" json:"mode"`
	Value       decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"value"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (HalfDay) TableName() string {
	return "half_days"
}
