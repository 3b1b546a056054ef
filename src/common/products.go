package common

import (
	"bookstore/src/models"
	"bookstore/src/models/scopes"
	"bookstore/src/types"
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ProductService struct {
	db *gorm.DB
}

// Create adds a product to the admin's state catalog. The chief admin picks the state.
func (s *ProductService) Create(ctx context.Context, actor Actor, body *types.CreateProductRequestBody) (*models.Product, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrForbidden
	}
	state := actor.State
	if actor.IsChief() {
		state = strings.TrimSpace(body.State)
	}
	if state == "" {
		return nil, fmt.Errorf("%w: state is required", ErrValidation)
	}
	if !body.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	}
	product := models.Product{
		Title:     strings.TrimSpace(body.Title),
		Author:    body.Author,
		Price:     body.Price,
		Stock:     body.Stock,
		State:     state,
		CreatedBy: actor.ID,
	}
	if product.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	err := s.db.
		WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			base := slug.Make(product.Title)
			candidate := base
			for i := 2; ; i++ {
				var count int64
				err := tx.
					Model(&models.Product{}).
					Unscoped().
					Where("state = ? AND slug = ?", state, candidate).
					Count(&count).
					Error
				if err != nil {
					return err
				}
				if count == 0 {
					break
				}
				candidate = fmt.Sprintf("%s-%d", base, i)
			}
			product.Slug = candidate
			return tx.Create(&product).Error
		})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) List(ctx context.Context, state string) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := s.db.
		WithContext(ctx).
		Scopes(scopes.WithState(state)).
		Order("title asc").
		Find(&products).
		Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
