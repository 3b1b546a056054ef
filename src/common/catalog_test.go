package common

import (
	"bookstore/src/models"
	"bookstore/src/types"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	admin := Actor{ID: 1, Role: types.ROLE_ADMIN, State: "Lagos"}
	body := &types.CreateProductRequestBody{Title: "Things Fall Apart", Price: decimal.NewFromInt(2500), Stock: 3, State: "Kano"}

	first, err := f.services.Products.Create(ctx, admin, body)
	require.NoError(t, err)
	assert.Equal(t, "things-fall-apart", first.Slug)
	assert.Equal(t, "Lagos", first.State)

	second, err := f.services.Products.Create(ctx, admin, body)
	require.NoError(t, err)
	assert.Equal(t, "things-fall-apart-2", second.Slug)

	chief := Actor{ID: 2, Role: types.ROLE_CHIEF_ADMIN}
	kano, err := f.services.Products.Create(ctx, chief, body)
	require.NoError(t, err)
	assert.Equal(t, "Kano", kano.State)
	assert.Equal(t, "things-fall-apart", kano.Slug)

	_, err = f.services.Products.Create(ctx, chief, &types.CreateProductRequestBody{Title: "x", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.services.Products.Create(ctx, admin, &types.CreateProductRequestBody{Title: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.services.Products.Create(ctx, Actor{Role: types.ROLE_CUSTOMER, State: "Lagos"}, body)
	assert.ErrorIs(t, err, ErrForbidden)

	lagos, err := f.services.Products.List(ctx, "Lagos")
	require.NoError(t, err)
	assert.Len(t, lagos, 2)
}

func TestAdminOrders(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	lagos := Actor{ID: 1, Role: types.ROLE_ADMIN, State: "Lagos"}
	kano := Actor{ID: 2, Role: types.ROLE_ADMIN, State: "Kano"}
	chief := Actor{ID: 3, Role: types.ROLE_CHIEF_ADMIN}
	body := &types.CreateAdminOrderRequestBody{Items: []types.AdminOrderItemRequest{{Title: "Purple Hibiscus", Quantity: 20}}, Note: "restock"}

	created, err := f.services.AdminOrders.Create(ctx, lagos, body)
	require.NoError(t, err)
	assert.Equal(t, "Lagos", created.State)
	assert.Equal(t, types.ORDER_PENDING, created.Status)
	_, err = f.services.AdminOrders.Create(ctx, kano, body)
	require.NoError(t, err)
	_, err = f.services.AdminOrders.Create(ctx, chief, body)
	assert.ErrorIs(t, err, ErrForbidden)

	own, err := f.services.AdminOrders.List(ctx, lagos)
	require.NoError(t, err)
	require.Len(t, own.([]models.AdminOrder), 1)
	assert.Len(t, own.([]models.AdminOrder)[0].Items, 1)

	all, err := f.services.AdminOrders.List(ctx, chief)
	require.NoError(t, err)
	assert.Len(t, all.(map[string][]models.AdminOrder), 2)

	_, err = f.services.AdminOrders.UpdateStatus(ctx, lagos, created.ID, types.ORDER_SHIPPED)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.services.AdminOrders.UpdateStatus(ctx, chief, created.ID, "bogus")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.services.AdminOrders.UpdateStatus(ctx, chief, 999, types.ORDER_SHIPPED)
	assert.ErrorIs(t, err, ErrNotFound)
	updated, err := f.services.AdminOrders.UpdateStatus(ctx, chief, created.ID, types.ORDER_SHIPPED)
	require.NoError(t, err)
	assert.Equal(t, types.ORDER_SHIPPED, updated.Status)
}
