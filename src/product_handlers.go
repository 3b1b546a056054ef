package main

import (
	"bookstore/src/common"
	"bookstore/src/middlewares"
	"bookstore/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

func publicProductHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.GET("/products", func(ctx *gin.Context) {
		var query types.ProductsQueryFilters
		if err := ctx.ShouldBindQuery(&query); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		products, err := services.Products.List(ctx.Request.Context(), query.State)
		if err != nil {
			ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": products, "count": len(products)})
	})
	return g
}

func productHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.POST("/products", middlewares.RequireRoles(types.ROLE_ADMIN, types.ROLE_CHIEF_ADMIN), func(ctx *gin.Context) {
		var body types.CreateProductRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		product, err := services.Products.Create(ctx.Request.Context(), actorFrom(ctx), &body)
		if err != nil {
			ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusCreated, gin.H{"data": product})
	})
	return g
}
