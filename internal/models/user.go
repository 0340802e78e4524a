package models

import (
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	ChatID    int64  `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username  string `json:"username"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `gorm:"type:varchar(20);default:'client'" json:"role"`

	// Region is the German state code whose holidays apply.
	Region string `gorm:"type:varchar(8);not null;default:'BB'" json:"region"`

	// Odoo credentials, sealed with pkg/secret.
	OdooSession string `json:"-"`
	OdooCSRF    string `json:"-"`
	OdooUID     string `json:"odoo_uid"`

	// CarryOver is the balance brought in from before tracking started.
	CarryOver decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"carry_over"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) SetRole(role Role) {
	u.Role = role
}

// HasCredentials reports whether Odoo credentials were stored.
func (u *User) HasCredentials() bool {
	return u.OdooSession != "" && u.OdooCSRF != "" && u.OdooUID != ""
}

// Identity is the key used for schedules and leave facts.
func (u *User) Identity() string {
	return PersonKey(u.ChatID)
}

func (User) TableName() string {
	return "users"
}
