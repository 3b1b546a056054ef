package common

import (
	"bookstore/src/models"
	"bookstore/src/types"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type AdminOrderService struct {
	db *gorm.DB
}

func (s *AdminOrderService) Create(ctx context.Context, actor Actor, body *types.CreateAdminOrderRequestBody) (*models.AdminOrder, error) {
	if actor.Role != types.ROLE_ADMIN {
		return nil, fmt.Errorf("%w: only state admins can raise procurement orders", ErrForbidden)
	}
	if actor.State == "" {
		return nil, fmt.Errorf("%w: admin has no state", ErrValidation)
	}
	items := make([]models.AdminOrderItem, 0, len(body.Items))
	for _, item := range body.Items {
		if item.Title == "" || item.Quantity == 0 {
			return nil, fmt.Errorf("%w: every item needs a title and a quantity", ErrValidation)
		}
		items = append(items, models.AdminOrderItem{Title: item.Title, Quantity: item.Quantity})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	order := models.AdminOrder{
		AdminID: actor.ID,
		State:   actor.State,
		Note:    body.Note,
		Status:  types.ORDER_PENDING,
		Items:   items,
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *AdminOrderService) List(ctx context.Context, actor Actor) (any, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrForbidden
	}
	orders := make([]models.AdminOrder, 0)
	q := s.db.
		WithContext(ctx).
		Preload("Items")
	if !actor.IsChief() {
		q = q.Where("admin_id = ?", actor.ID)
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
	return groupByState(orders, func(o models.AdminOrder) string { return o.State }), nil
}

func (s *AdminOrderService) UpdateStatus(ctx context.Context, actor Actor, id uint, status types.OrderStatus) (*models.AdminOrder, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	if !actor.IsChief() {
		return nil, ErrForbidden
	}
	var order models.AdminOrder
	err := s.db.
		WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			err := tx.
				Preload("Items").
				Where("id = ?", id).
				First(&order).
				Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: admin order %d", ErrNotFound, id)
			}
			if err != nil {
				return err
			}
			if err := tx.Model(&models.AdminOrder{}).Where("id = ?", id).Update("status", status).Error; err != nil {
				return err
			}
			order.Status = status
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
