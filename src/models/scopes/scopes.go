package scopes

import (
	"bookstore/src/types"

	"gorm.io/gorm"
)

func WithID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func WithState(state string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("state = ?", state)
	}
}

// WithFailedStatus selects transactions still waiting in the reconciliation queue.
func WithFailedStatus(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", types.TRANSACTION_FAILED)
}
