package common

import (
	"bookstore/src/lib"
	"bookstore/src/lib/mailer"
	"bookstore/src/models"
	"bookstore/src/models/scopes"
	"bookstore/src/types"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// forward-only lifecycle used when strict transitions are enabled
var orderTransitions = map[types.OrderStatus][]types.OrderStatus{
	types.ORDER_PENDING:    {types.ORDER_PROCESSING, types.ORDER_CANCELED},
	types.ORDER_PROCESSING: {types.ORDER_SHIPPED, types.ORDER_CANCELED},
	types.ORDER_SHIPPED:    {types.ORDER_DELIVERED},
	types.ORDER_DELIVERED:  {},
	types.ORDER_CANCELED:   {},
}

func CanTransition(from, to types.OrderStatus) bool {
	return slices.Contains(orderTransitions[from], to)
}

type OrderService struct {
	db     *gorm.DB
	notify *notifier
	strict bool
}

// CreateOrder places an order for the purchaser's region. Every product must exist in that region
// and have enough stock; stock is taken and the order written in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, actor Actor, body *types.CreateOrderRequestBody) (*models.Order, error) {
	if actor.State == "" {
		return nil, fmt.Errorf("%w: purchaser has no state", ErrValidation)
	}
	if len(body.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	quantities := make(map[uint]uint)
	productIDs := make([]uint, 0, len(body.Items))
	for _, item := range body.Items {
		if item.Quantity == 0 {
			return nil, fmt.Errorf("%w: quantity for product %d must be at least 1", ErrValidation, item.ProductID)
		}
		if _, ok := quantities[item.ProductID]; !ok {
			productIDs = append(productIDs, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	order := models.Order{
		UserID:        actor.ID,
		ShippingName:  body.ShippingName,
		ShippingEmail: body.ShippingEmail,
		ShippingPhone: body.ShippingPhone,
		Address:       body.Address,
		City:          body.City,
		PostalCode:    body.PostalCode,
		State:         actor.State,
		Status:        types.ORDER_PENDING,
	}
	if body.TransactionID != nil {
		if id := strings.TrimSpace(*body.TransactionID); id != "" {
			order.TransactionID = &id
		}
	}
	err := s.db.
		WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			if order.TransactionID != nil {
				if err := checkOrderPayment(tx, actor, *order.TransactionID); err != nil {
					return err
				}
			}
			total := decimal.Zero
			items := make([]models.OrderItem, 0, len(productIDs))
			for _, id := range productIDs {
				qty := quantities[id]
				var product models.Product
				err := tx.
					Where("id = ?", id).
					First(&product).
					Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d not found", ErrValidation, id)
				}
				if err != nil {
					return err
				}
				if product.State != actor.State {
					return fmt.Errorf("%w: product %d is not available in %s", ErrValidation, id, actor.State)
				}
				if product.Stock < qty {
					return fmt.Errorf("%w: insufficient stock for %s", ErrValidation, product.Title)
				}
				result := tx.
					Model(&models.Product{}).
					Where("id = ? AND stock >= ?", id, qty).
					Update("stock", gorm.Expr("stock - ?", qty))
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected == 0 {
					return fmt.Errorf("%w: insufficient stock for %s", ErrValidation, product.Title)
				}
				total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
				items = append(items, models.OrderItem{
					ProductID: id,
					Title:     product.Title,
					Quantity:  qty,
					UnitPrice: product.Price,
				})
			}
			order.TotalPrice = total
			order.Items = items
			return tx.Create(&order).Error
		})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// checkOrderPayment accepts a payment that exists, was not recorded as failed, belongs to the
// purchaser and is not already attached to another order.
func checkOrderPayment(tx *gorm.DB, actor Actor, transactionID string) error {
	var payment models.FlutterwaveTransaction
	err := tx.
		Where("transaction_id = ?", transactionID).
		First(&payment).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: transaction %s not found", ErrValidation, transactionID)
	}
	if err != nil {
		return err
	}
	if payment.UserID != nil && *payment.UserID != actor.ID {
		return fmt.Errorf("%w: transaction %s belongs to another user", ErrForbidden, transactionID)
	}
	if payment.Status == types.TRANSACTION_FAILED {
		return fmt.Errorf("%w: transaction %s failed", ErrValidation, transactionID)
	}
	var linked int64
	err = tx.
		Model(&models.Order{}).
		Where("transaction_id = ?", transactionID).
		Count(&linked).
		Error
	if err != nil {
		return err
	}
	if linked > 0 {
		return fmt.Errorf("%w: transaction %s is already attached to an order", ErrConflict, transactionID)
	}
	return nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := s.db.
		WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).
		Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAdminOrders returns the orders of the admin's state, or for the chief admin every order
// keyed by state.
func (s *OrderService) ListAdminOrders(ctx context.Context, actor Actor) (any, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrForbidden
	}
	orders := make([]models.Order, 0)
	q := s.db.
		WithContext(ctx).
		Preload("Items")
	if !actor.IsChief() {
		q = q.Scopes(scopes.WithState(actor.State))
	}
	err := q.
		Order("created_at desc").
		Find(&orders).
		Error
	if err != nil {
		return nil, err
	}
	if !actor.IsChief() {
		return orders, nil
	}
	return groupByState(orders, func(o models.Order) string { return o.State }), nil
}

// UpdateStatus moves an order to a new status. Regional admins are limited to their own state.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, orderID uint, status types.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	if !actor.Role.IsAdmin() {
		return nil, ErrForbidden
	}
	var order models.Order
	changed := false
	err := s.db.
		WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			err := tx.
				Preload("Items").
				Scopes(scopes.WithID(orderID)).
				First(&order).
				Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			if err != nil {
				return err
			}
			if !actor.IsChief() && order.State != actor.State {
				return fmt.Errorf("%w: order %d belongs to another state", ErrForbidden, orderID)
			}
			if order.Status == status {
				return nil
			}
			if s.strict && !CanTransition(order.Status, status) {
				return fmt.Errorf("%w: cannot move order from %s to %s", ErrValidation, order.Status, status)
			}
			result := tx.
				Model(&models.Order{}).
				Where("id = ? AND status = ?", order.ID, order.Status).
				Update("status", status)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: order %d changed status while updating, retry", ErrConflict, orderID)
			}
			order.Status = status
			changed = true
			return nil
		})
	if err != nil {
		return nil, err
	}
	if changed {
		s.notify.mail(mailer.OrderStatusChanged(&order))
		s.notify.event(lib.EVENT_ORDER_STATUS, fmt.Sprint(order.ID), map[string]any{
			"orderId": order.ID,
			"state":   order.State,
			"status":  order.Status,
		})
	}
	return &order, nil
}

func groupByState[T any](rows []T, stateOf func(T) string) map[string][]T {
	grouped := make(map[string][]T)
	for _, row := range rows {
		state := stateOf(row)
		grouped[state] = append(grouped[state], row)
	}
	return grouped
}
