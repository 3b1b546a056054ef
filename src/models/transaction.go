package models

import (
	"bookstore/src/types"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Customer struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
}

type FlutterwaveTransaction struct {
	ID              uint                    `gorm:"primarykey" json:"id"`
	TransactionID   string                  `gorm:"uniqueIndex;not null" json:"transactionId"`
	TxRef           string                  `gorm:"index;not null" json:"tx_ref"`
	FlwRef          string                  `json:"flw_ref,omitempty"`
	Amount          decimal.Decimal         `gorm:"type:decimal(20,2)" json:"amount"`
	Currency        string                  `gorm:"default:'NGN'" json:"currency"`
	PaymentType     string                  `json:"payment_type,omitempty"`
	Customer        Customer                `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	PaymentDate     time.Time               `json:"payment_date"`
	Status          types.TransactionStatus `gorm:"type:text;default:'pending'" json:"status"`
	UserID          *uint                   `gorm:"index" json:"userId,omitempty"`
	State           string                  `gorm:"index" json:"state,omitempty"`
	GatewayResponse datatypes.JSON          `json:"-"`

	types.Timestamps
}
