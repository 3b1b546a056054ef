package common

import (
	"bookstore/src/config"
	"bookstore/src/lib"
	"bookstore/src/types"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// WebhookTrigger is what the webhook body tells us. It is never persisted as payment data;
// it only names the transaction to re-verify.
type WebhookTrigger struct {
	TransactionID string
	TxRef         string
	Email         string
	Amount        decimal.Decimal
}

func ParseWebhook(body []byte) (*WebhookTrigger, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON body", ErrValidation)
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return nil, fmt.Errorf("%w: missing data", ErrValidation)
	}
	status := strings.ToLower(data.Get("status").String())
	if status != string(types.TRANSACTION_SUCCESSFUL) && status != string(types.TRANSACTION_COMPLETED) {
		return nil, fmt.Errorf("%w: transaction not successful or missing customer information", ErrValidation)
	}
	customer := data.Get("customer")
	if !customer.IsObject() {
		return nil, fmt.Errorf("%w: transaction not successful or missing customer information", ErrValidation)
	}
	id := data.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("%w: missing data.id", ErrValidation)
	}
	amount, err := decimal.NewFromString(data.Get("amount").String())
	if err != nil {
		amount = decimal.Zero
	}
	return &WebhookTrigger{
		TransactionID: id,
		TxRef:         data.Get("tx_ref").String(),
		Email:         customer.Get("email").String(),
		Amount:        amount,
	}, nil
}

type WebhookProcessor struct {
	verifier     *Verifier
	transactions *TransactionService
	locker       lib.Locker
}

// Process re-verifies the triggered transaction and saves the verified gateway data.
// When every attempt fails the transaction is queued for the reconciliation sweep.
func (p *WebhookProcessor) Process(ctx context.Context, trigger *WebhookTrigger) (*types.SaveTransactionResult, error) {
	key := "transactions:" + trigger.TransactionID
	ttl := p.verifier.MaxDuration() + config.DEFAULT_LOCK_TTL
	locked, err := p.locker.Acquire(ctx, key, ttl)
	if err != nil {
		log.Printf("Error acquiring lock for %s: %s\n", trigger.TransactionID, err.Error())
	}
	if locked {
		defer func() {
			if err := p.locker.Release(context.Background(), key); err != nil {
				log.Printf("Error releasing lock for %s: %s\n", trigger.TransactionID, err.Error())
			}
		}()
	}

	res, err := p.verifier.VerifyWithRetry(ctx, trigger.TransactionID)
	if err != nil {
		if errors.Is(err, ErrVerificationExhausted) {
			if ferr := p.transactions.RecordFailure(ctx, trigger, p.verifier.Attempts(), err); ferr != nil {
				log.Printf("Error recording failed transaction %s: %s\n", trigger.TransactionID, ferr.Error())
			}
		}
		return nil, err
	}
	result, _, err := p.transactions.SaveTransaction(ctx, PayloadFromVerified(res))
	if err != nil {
		return nil, err
	}
	log.Printf("[webhook] Transaction %s: %s\n", trigger.TransactionID, result.Message)
	return result, nil
}
