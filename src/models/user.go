package models

import (
	"bookstore/src/types"
	"time"
)

type User struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	Name          string     `json:"name,omitempty"`
	Email         string     `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Role          types.Role `gorm:"type:text;default:'customer'" json:"role,omitempty"`
	State         string     `gorm:"index" json:"state,omitempty"`
	EmailVerified bool       `json:"email_verified,omitempty"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`

	Orders []Order `gorm:"foreignKey:user_id" json:"orders,omitempty"`

	types.Timestamps
}
