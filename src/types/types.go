package types

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type Role string

const (
	ROLE_CUSTOMER    Role = "customer"
	ROLE_ADMIN       Role = "admin"
	ROLE_CHIEF_ADMIN Role = "chief_admin"
)

func (r Role) IsAdmin() bool {
	return r == ROLE_ADMIN || r == ROLE_CHIEF_ADMIN
}

type TransactionStatus string

const (
	TRANSACTION_PENDING    TransactionStatus = "pending"
	TRANSACTION_SUCCESSFUL TransactionStatus = "successful"
	TRANSACTION_FAILED     TransactionStatus = "failed"
	TRANSACTION_COMPLETED  TransactionStatus = "completed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TRANSACTION_PENDING, TRANSACTION_SUCCESSFUL, TRANSACTION_FAILED, TRANSACTION_COMPLETED:
		return true
	}
	return false
}

type OrderStatus string

const (
	ORDER_PENDING    OrderStatus = "pending"
	ORDER_PROCESSING OrderStatus = "processing"
	ORDER_SHIPPED    OrderStatus = "shipped"
	ORDER_DELIVERED  OrderStatus = "delivered"
	ORDER_CANCELED   OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case ORDER_PENDING, ORDER_PROCESSING, ORDER_SHIPPED, ORDER_DELIVERED, ORDER_CANCELED:
		return true
	}
	return false
}

type Environment string

const (
	Local      Environment = "local"
	Test       Environment = "test"
	Production Environment = "production"
)

// Customer is the payer snapshot attached to a payment.
type Customer struct {
	Email       string `json:"email" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Name        string `json:"name" validate:"required"`
}

type SaveTransactionRequestBody struct {
	TransactionID string            `json:"transactionId" validate:"required"`
	TxRef         string            `json:"tx_ref" validate:"required"`
	FlwRef        string            `json:"flw_ref,omitempty"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency,omitempty"`
	PaymentType   string            `json:"payment_type,omitempty"`
	Customer      Customer          `json:"customer"`
	PaymentDate   *time.Time        `json:"payment_date,omitempty"`
	Status        TransactionStatus `json:"status,omitempty"`
	UserID        *uint             `json:"userId,omitempty"`
	State         string            `json:"state,omitempty"`
	// raw verify payload, stored as-is when present
	GatewayResponse []byte `json:"-"`
}

type SaveTransactionResult struct {
	Created bool   `json:"created"`
	Message string `json:"message"`
	ID      uint   `json:"id,omitempty"`
}

type OrderItemRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  uint `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequestBody struct {
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingName  string             `json:"name" binding:"required"`
	ShippingEmail string             `json:"email" binding:"required,email"`
	ShippingPhone string             `json:"phone" binding:"required"`
	Address       string             `json:"address" binding:"required"`
	City          string             `json:"city" binding:"required"`
	PostalCode    string             `json:"postalCode,omitempty"`
	TransactionID *string            `json:"transactionId,omitempty"`
}

type UpdateOrderStatusRequestBody struct {
	OrderID uint        `json:"orderId" binding:"required"`
	Status  OrderStatus `json:"status" binding:"required,orderstatus"`
}

type AdminOrderItemRequest struct {
	Title    string `json:"title" binding:"required"`
	Quantity uint   `json:"quantity" binding:"required,min=1"`
}

type CreateAdminOrderRequestBody struct {
	Items []AdminOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Note  string                  `json:"note,omitempty"`
}

type CreateProductRequestBody struct {
	Title  string          `json:"title" binding:"required"`
	Author string          `json:"author,omitempty"`
	Price  decimal.Decimal `json:"price"`
	Stock  uint            `json:"stock"`
	State  string          `json:"state,omitempty"`
}

type ProductsQueryFilters struct {
	State string `form:"state" binding:"required"`
}

type TransactionsQueryFilters struct {
	State string `form:"state,omitempty"`
}

type VerifyTransactionURIParams struct {
	TransactionID string `uri:"tx_id" binding:"required"`
}

type RequestOTPRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyOTPRequestBody struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	State string `json:"state,omitempty"`
}

// ReconcileSummary is what one reconciliation sweep did.
type ReconcileSummary struct {
	Checked   int `json:"checked"`
	Recovered int `json:"recovered"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}
