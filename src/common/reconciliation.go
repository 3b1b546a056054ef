package common

import (
	"bookstore/src/config"
	"bookstore/src/lib"
	"bookstore/src/models"
	"bookstore/src/models/scopes"
	"bookstore/src/types"
	"context"
	"fmt"
	"log"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

type sweepOutcome int

const (
	outcomeRecovered sweepOutcome = iota
	outcomeFailed
	outcomeSkipped
)

// Reconciler re-checks queued failed transactions against the gateway.
type Reconciler struct {
	db      *gorm.DB
	gateway lib.PaymentGateway
	locker  lib.Locker
	notify  *notifier
	clock   clockwork.Clock
}

// Sweep verifies every failed record once. Records the gateway now confirms are flipped to
// successful in place. Errors on one record never stop the sweep.
func (r *Reconciler) Sweep(ctx context.Context) types.ReconcileSummary {
	var summary types.ReconcileSummary
	var failed []models.FailedTransaction
	err := r.db.
		WithContext(ctx).
		Scopes(scopes.WithFailedStatus).
		Order("id asc").
		Find(&failed).
		Error
	if err != nil {
		log.Printf("Error loading failed transactions: %s\n", err.Error())
		return summary
	}

	for i := range failed {
		if ctx.Err() != nil {
			log.Println("[reconcile] Sweep interrupted")
			break
		}
		summary.Checked++
		switch r.reconcile(ctx, &failed[i]) {
		case outcomeRecovered:
			summary.Recovered++
		case outcomeFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
	}
	log.Printf("[reconcile] checked=%d recovered=%d failed=%d skipped=%d\n", summary.Checked, summary.Recovered, summary.Failed, summary.Skipped)
	return summary
}

func (r *Reconciler) reconcile(ctx context.Context, f *models.FailedTransaction) sweepOutcome {
	key := "transactions:" + f.TransactionID
	locked, err := r.locker.Acquire(ctx, key, config.DEFAULT_LOCK_TTL)
	if err != nil {
		log.Printf("Error acquiring lock for %s: %s\n", f.TransactionID, err.Error())
		return outcomeSkipped
	}
	if !locked {
		log.Printf("[reconcile] Transaction %s is being processed elsewhere. Skipping\n", f.TransactionID)
		return outcomeSkipped
	}
	defer func() {
		if err := r.locker.Release(context.Background(), key); err != nil {
			log.Printf("Error releasing lock for %s: %s\n", f.TransactionID, err.Error())
		}
	}()

	res, err := r.gateway.VerifyTransaction(ctx, f.TransactionID)
	if err == nil && res.Successful() {
		return r.markRecovered(ctx, f)
	}
	if err == nil {
		err = fmt.Errorf("gateway did not confirm payment: %s", res.Describe())
	}
	log.Printf("Error reconciling transaction %s: %s\n", f.TransactionID, err.Error())
	if uerr := r.markAttempt(ctx, f, err); uerr != nil {
		log.Printf("Error updating failed transaction %s: %s\n", f.TransactionID, uerr.Error())
	}
	return outcomeFailed
}

func (r *Reconciler) markRecovered(ctx context.Context, f *models.FailedTransaction) sweepOutcome {
	now := r.clock.Now()
	result := r.db.
		WithContext(ctx).
		Model(&models.FailedTransaction{}).
		Where("id = ? AND status = ?", f.ID, types.TRANSACTION_FAILED).
		Updates(map[string]any{
			"status":          types.TRANSACTION_SUCCESSFUL,
			"attempts":        gorm.Expr("attempts + 1"),
			"last_error":      "",
			"last_attempt_at": now,
		})
	if result.Error != nil {
		log.Printf("Error updating failed transaction %s: %s\n", f.TransactionID, result.Error.Error())
		return outcomeSkipped
	}
	if result.RowsAffected == 0 {
		return outcomeSkipped
	}
	log.Printf("[reconcile] Transaction %s recovered\n", f.TransactionID)
	r.notify.event(lib.EVENT_TRANSACTION_RECOVERED, f.TransactionID, map[string]any{
		"transactionId": f.TransactionID,
		"tx_ref":        f.TxRef,
		"email":         f.Email,
	})
	return outcomeRecovered
}

func (r *Reconciler) markAttempt(ctx context.Context, f *models.FailedTransaction, cause error) error {
	now := r.clock.Now()
	return r.db.
		WithContext(ctx).
		Model(&models.FailedTransaction{}).
		Where("id = ? AND status = ?", f.ID, types.TRANSACTION_FAILED).
		Updates(map[string]any{
			"attempts":        gorm.Expr("attempts + 1"),
			"last_error":      cause.Error(),
			"last_attempt_at": now,
		}).
		Error
}
