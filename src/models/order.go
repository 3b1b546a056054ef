package models

import (
	"bookstore/src/types"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            uint              `gorm:"primarykey" json:"id"`
	UserID        uint              `gorm:"index" json:"user_id"`
	ShippingName  string            `json:"name"`
	ShippingEmail string            `json:"email"`
	ShippingPhone string            `json:"phone"`
	Address       string            `json:"address"`
	City          string            `json:"city"`
	PostalCode    string            `json:"postal_code,omitempty"`
	State         string            `gorm:"index" json:"state"`
	TotalPrice    decimal.Decimal   `gorm:"type:decimal(20,2)" json:"total_price"`
	TransactionID *string           `json:"transaction_id,omitempty"`
	Status        types.OrderStatus `gorm:"type:text;default:'pending'" json:"status"`

	Items []OrderItem `gorm:"foreignKey:order_id" json:"items"`
	User  *User       `gorm:"foreignKey:user_id" json:"-"`

	types.Timestamps
}

type OrderItem struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uint            `gorm:"index" json:"order_id"`
	ProductID uint            `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  uint            `json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,2)" json:"unit_price"`

	Product *Product `gorm:"foreignKey:product_id" json:"-"`
}
