package models

import (
	"bookstore/src/types"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	Title     string          `json:"title"`
	Slug      string          `gorm:"uniqueIndex:idx_product_state_slug" json:"slug"`
	Author    string          `json:"author,omitempty"`
	Price     decimal.Decimal `gorm:"type:decimal(20,2)" json:"price"`
	Stock     uint            `json:"stock"`
	State     string          `gorm:"uniqueIndex:idx_product_state_slug;index" json:"state"`
	CreatedBy uint            `json:"created_by,omitempty"`

	types.Timestamps
}
