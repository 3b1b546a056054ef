package main

import (
	"bookstore/src/controllers"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func guestAuthRoutes(g *gin.RouterGroup) *gin.RouterGroup {
	guest := g.Group("/auth/otp")
	guest.
		POST("/request", func(ctx *gin.Context) {
			status, err := controllers.AuthRequestOTP(ctx, appMailer)
			if err != nil {
				log.Printf("[AuthRequestOTP] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Login code sent"})
		}).
		POST("/verify", func(ctx *gin.Context) {
			token, status, err := controllers.AuthVerifyOTP(ctx)
			if err != nil {
				log.Printf("[AuthVerifyOTP] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"token": token})
		})
	return guest
}
