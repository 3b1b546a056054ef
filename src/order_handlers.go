package main

import (
	"bookstore/src/common"
	"bookstore/src/middlewares"
	"bookstore/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func orderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	customers := middlewares.RequireRoles(types.ROLE_CUSTOMER)
	adminRoles := middlewares.RequireRoles(types.ROLE_ADMIN, types.ROLE_CHIEF_ADMIN)

	g.
		POST("/orders", customers, func(ctx *gin.Context) {
			var body types.CreateOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			order, err := services.Orders.CreateOrder(ctx.Request.Context(), actorFrom(ctx), &body)
			if err != nil {
				log.Printf("Error creating order: %s\n", err.Error())
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": order})
		}).
		GET("/orders/user", customers, func(ctx *gin.Context) {
			orders, err := services.Orders.ListUserOrders(ctx.Request.Context(), ctx.GetUint("id"))
			if err != nil {
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders, "count": len(orders)})
		}).
		GET("/orders/admin", adminRoles, func(ctx *gin.Context) {
			orders, err := services.Orders.ListAdminOrders(ctx.Request.Context(), actorFrom(ctx))
			if err != nil {
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders})
		}).
		PUT("/orders/status", func(ctx *gin.Context) {
			var body types.UpdateOrderStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			order, err := services.Orders.UpdateStatus(ctx.Request.Context(), actorFrom(ctx), body.OrderID, body.Status)
			if err != nil {
				log.Printf("Error updating order %d: %s\n", body.OrderID, err.Error())
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		})
	return g
}

func adminOrderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	ao := g.Group("/admin-orders")
	ao.Use(middlewares.RequireRoles(types.ROLE_ADMIN, types.ROLE_CHIEF_ADMIN))
	ao.
		POST("", func(ctx *gin.Context) {
			var body types.CreateAdminOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			order, err := services.AdminOrders.Create(ctx.Request.Context(), actorFrom(ctx), &body)
			if err != nil {
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": order})
		}).
		GET("", func(ctx *gin.Context) {
			orders, err := services.AdminOrders.List(ctx.Request.Context(), actorFrom(ctx))
			if err != nil {
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders})
		}).
		PUT("/status", func(ctx *gin.Context) {
			var body types.UpdateOrderStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			order, err := services.AdminOrders.UpdateStatus(ctx.Request.Context(), actorFrom(ctx), body.OrderID, body.Status)
			if err != nil {
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		})
	return ao
}
