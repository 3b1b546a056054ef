package main

import (
	"bookstore/src/common"
	"bookstore/src/config"
	"bookstore/src/middlewares"
	"bookstore/src/types"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// flutterwavePublicRoutes are reachable without a session: the gateway calls the webhook and a
// client that has just paid confirms the payment through verify.
func flutterwavePublicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/flutterwave/webhook", middlewares.VerifyWebhookSignature, func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		trigger, err := common.ParseWebhook(payload)
		if err != nil {
			log.Printf("[FlutterwaveWebhook] Rejected: %s\n", err.Error())
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[FlutterwaveWebhook] Transaction %s (%s)\n", trigger.TransactionID, trigger.TxRef)

		if config.WebhookMode() == config.WEBHOOK_MODE_SYNC {
			result, err := services.Webhooks.Process(ctx.Request.Context(), trigger)
			if err != nil {
				log.Printf("Error processing webhook for %s: %s\n", trigger.TransactionID, err.Error())
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": result.Message, "data": result})
			return
		}

		jobID, err := scheduler.Enqueue("webhook:"+trigger.TransactionID, func(jctx context.Context) error {
			_, err := services.Webhooks.Process(jctx, trigger)
			return err
		})
		if err != nil {
			log.Printf("Error queueing webhook for %s: %s\n", trigger.TransactionID, err.Error())
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[FlutterwaveWebhook] Queued job %s\n", *jobID)
		ctx.JSON(http.StatusAccepted, gin.H{"status": "queued"})
	})
	apiv1.GET("/flutterwave/verify/:tx_id", func(ctx *gin.Context) {
		var params types.VerifyTransactionURIParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := services.Verifier.VerifyOnce(ctx.Request.Context(), params.TransactionID)
		if err != nil {
			log.Printf("[Flutterwave] Error verifying transaction %s: %s\n", params.TransactionID, err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !res.Successful() {
			var raw any
			if len(res.Raw) > 0 {
				raw = json.RawMessage(res.Raw)
			}
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Transaction verification failed", "data": raw})
			return
		}
		result, _, err := services.Transactions.SaveTransaction(ctx.Request.Context(), common.PayloadFromVerified(res))
		if err != nil {
			log.Printf("Error saving verified transaction %s: %s\n", params.TransactionID, err.Error())
			ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": res.Data, "result": result})
	})
	return apiv1
}

func flutterwaveHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	adminRoles := middlewares.RequireRoles(types.ROLE_ADMIN, types.ROLE_CHIEF_ADMIN)
	chiefOnly := middlewares.RequireRoles(types.ROLE_CHIEF_ADMIN)

	fw := g.Group("/flutterwave")
	fw.
		POST("/save-transaction", func(ctx *gin.Context) {
			var body types.SaveTransactionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// client-reported payments start pending; only gateway verification marks them successful
			actor := actorFrom(ctx)
			body.Status = types.TRANSACTION_PENDING
			body.UserID = &actor.ID
			body.State = actor.State
			result, record, err := services.Transactions.SaveTransaction(ctx.Request.Context(), &body)
			if err != nil {
				log.Printf("Error saving transaction: %s\n", err.Error())
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			status := http.StatusOK
			if result.Created {
				status = http.StatusCreated
			}
			ctx.JSON(status, gin.H{"message": result.Message, "data": record})
		}).
		GET("/transactions", adminRoles, func(ctx *gin.Context) {
			var query types.TransactionsQueryFilters
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			txs, err := services.Transactions.ListTransactions(ctx.Request.Context(), actorFrom(ctx), query.State)
			if err != nil {
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txs, "count": len(txs)})
		}).
		GET("/failed-transactions", chiefOnly, func(ctx *gin.Context) {
			failed, err := services.Transactions.ListFailed(ctx.Request.Context())
			if err != nil {
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": failed, "count": len(failed)})
		}).
		POST("/reconcile", chiefOnly, func(ctx *gin.Context) {
			summary := services.Reconciler.Sweep(ctx.Request.Context())
			ctx.JSON(http.StatusOK, gin.H{"data": summary})
		})
	return g
}
