package models

import (
	"bookstore/src/types"
	"time"

	"github.com/shopspring/decimal"
)

// FailedTransaction is a payment whose verification was exhausted and awaits the reconciliation sweep.
type FailedTransaction struct {
	ID            uint                    `gorm:"primarykey" json:"id"`
	TransactionID string                  `gorm:"uniqueIndex;not null" json:"transactionId"`
	TxRef         string                  `json:"tx_ref"`
	Amount        decimal.Decimal         `gorm:"type:decimal(20,2)" json:"amount"`
	Email         string                  `json:"email"`
	Status        types.TransactionStatus `gorm:"type:text;default:'failed';index" json:"status"`
	Attempts      uint                    `json:"attempts"`
	LastError     string                  `json:"last_error,omitempty"`
	LastAttemptAt *time.Time              `json:"last_attempt_at,omitempty"`

	types.Timestamps
}
