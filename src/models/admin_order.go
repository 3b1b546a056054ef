package models

import "bookstore/src/types"

// AdminOrder is a procurement request raised by a state admin towards the chief admin.
type AdminOrder struct {
	ID      uint              `gorm:"primarykey" json:"id"`
	AdminID uint              `gorm:"index" json:"admin_id"`
	State   string            `gorm:"index" json:"state"`
	Note    string            `json:"note,omitempty"`
	Status  types.OrderStatus `gorm:"type:text;default:'pending'" json:"status"`

	Items []AdminOrderItem `gorm:"foreignKey:admin_order_id" json:"items"`

	types.Timestamps
}

type AdminOrderItem struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	AdminOrderID uint   `gorm:"index" json:"admin_order_id"`
	Title        string `json:"title"`
	Quantity     uint   `json:"quantity"`
}
