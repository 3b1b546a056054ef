package common

import (
	"bookstore/src/config"
	"bookstore/src/lib"
	"bookstore/src/lib/mailer"
	"bookstore/src/models"
	"bookstore/src/models/scopes"
	"bookstore/src/types"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jonboulle/clockwork"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MSG_TRANSACTION_SAVED  = "Transaction saved"
	MSG_TRANSACTION_EXISTS = "Transaction already exists"
)

type TransactionService struct {
	db     *gorm.DB
	notify *notifier
	clock  clockwork.Clock
}

// SaveTransaction inserts a payment record once per gateway transaction id.
// A second save with the same id is reported as existing and changes nothing.
func (s *TransactionService) SaveTransaction(ctx context.Context, input *types.SaveTransactionRequestBody) (*types.SaveTransactionResult, *models.FlutterwaveTransaction, error) {
	input.TransactionID = strings.TrimSpace(input.TransactionID)
	input.TxRef = strings.TrimSpace(input.TxRef)
	if err := validateStruct(input); err != nil {
		return nil, nil, err
	}
	if input.Status == "" {
		input.Status = types.TRANSACTION_PENDING
	}
	if !input.Status.Valid() {
		return nil, nil, fmt.Errorf("%w: invalid status %q", ErrValidation, input.Status)
	}
	if input.Amount.IsNegative() {
		return nil, nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}

	db := s.db.WithContext(ctx)
	var existing models.FlutterwaveTransaction
	err := db.
		Where(&models.FlutterwaveTransaction{TransactionID: input.TransactionID}).
		First(&existing).
		Error
	if err == nil {
		return &types.SaveTransactionResult{Created: false, Message: MSG_TRANSACTION_EXISTS, ID: existing.ID}, &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	record := s.buildRecord(ctx, input)
	result := db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		log.Printf("Error saving transaction %s: %s\n", input.TransactionID, result.Error.Error())
		return nil, nil, result.Error
	}
	if result.RowsAffected == 0 {
		// lost the race against a concurrent insert
		if err := db.Where(&models.FlutterwaveTransaction{TransactionID: input.TransactionID}).First(&existing).Error; err != nil {
			return nil, nil, err
		}
		return &types.SaveTransactionResult{Created: false, Message: MSG_TRANSACTION_EXISTS, ID: existing.ID}, &existing, nil
	}

	s.notify.mail(mailer.PaymentReceipt(record))
	s.notify.event(lib.EVENT_TRANSACTION_SAVED, record.TransactionID, record)
	return &types.SaveTransactionResult{Created: true, Message: MSG_TRANSACTION_SAVED, ID: record.ID}, record, nil
}

func (s *TransactionService) buildRecord(ctx context.Context, input *types.SaveTransactionRequestBody) *models.FlutterwaveTransaction {
	record := &models.FlutterwaveTransaction{
		TransactionID: input.TransactionID,
		TxRef:         input.TxRef,
		FlwRef:        input.FlwRef,
		Amount:        input.Amount,
		Currency:      input.Currency,
		PaymentType:   input.PaymentType,
		Customer: models.Customer{
			Email:       input.Customer.Email,
			PhoneNumber: input.Customer.PhoneNumber,
			Name:        input.Customer.Name,
		},
		Status: input.Status,
		UserID: input.UserID,
		State:  input.State,
	}
	if record.Currency == "" {
		record.Currency = config.DEFAULT_CURRENCY
	}
	if input.PaymentDate != nil && !input.PaymentDate.IsZero() {
		record.PaymentDate = *input.PaymentDate
	} else {
		record.PaymentDate = s.clock.Now()
	}
	if len(input.GatewayResponse) > 0 {
		record.GatewayResponse = datatypes.JSON(input.GatewayResponse)
	}
	if record.UserID == nil {
		s.resolveOwner(ctx, record)
	}
	return record
}

// resolveOwner links the payment to the user with the customer's email, if any.
func (s *TransactionService) resolveOwner(ctx context.Context, record *models.FlutterwaveTransaction) {
	if record.Customer.Email == "" {
		return
	}
	var user models.User
	err := s.db.
		WithContext(ctx).
		Select("id", "state").
		Where("LOWER(email) = ?", strings.ToLower(record.Customer.Email)).
		First(&user).
		Error
	if err != nil {
		return
	}
	record.UserID = &user.ID
	if record.State == "" {
		record.State = user.State
	}
}

// RecordFailure queues a transaction whose verification was exhausted for the reconciliation sweep.
// Repeated failures for the same id bump the attempt counter of the existing row.
func (s *TransactionService) RecordFailure(ctx context.Context, trigger *WebhookTrigger, attempts int, cause error) error {
	now := s.clock.Now()
	lastError := ""
	if cause != nil {
		lastError = cause.Error()
	}
	return s.db.
		WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			var existing models.FailedTransaction
			err := tx.
				Where(&models.FailedTransaction{TransactionID: trigger.TransactionID}).
				First(&existing).
				Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.
					Clauses(clause.OnConflict{DoNothing: true}).
					Create(&models.FailedTransaction{
						TransactionID: trigger.TransactionID,
						TxRef:         trigger.TxRef,
						Amount:        trigger.Amount,
						Email:         trigger.Email,
						Status:        types.TRANSACTION_FAILED,
						Attempts:      uint(attempts),
						LastError:     lastError,
						LastAttemptAt: &now,
					}).
					Error
			}
			if err != nil {
				return err
			}
			return tx.
				Model(&models.FailedTransaction{}).
				Where("id = ?", existing.ID).
				Updates(map[string]any{
					"attempts":        gorm.Expr("attempts + ?", attempts),
					"last_error":      lastError,
					"last_attempt_at": now,
				}).
				Error
		})
}

func (s *TransactionService) ListTransactions(ctx context.Context, actor Actor, state string) ([]models.FlutterwaveTransaction, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrForbidden
	}
	txs := make([]models.FlutterwaveTransaction, 0)
	q := s.db.WithContext(ctx).Model(&models.FlutterwaveTransaction{})
	if !actor.IsChief() {
		q = q.Scopes(scopes.WithState(actor.State))
	} else if state != "" {
		q = q.Scopes(scopes.WithState(state))
	}
	err := q.
		Order("payment_date desc").
		Find(&txs).
		Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *TransactionService) ListFailed(ctx context.Context) ([]models.FailedTransaction, error) {
	failed := make([]models.FailedTransaction, 0)
	err := s.db.
		WithContext(ctx).
		Order("id asc").
		Find(&failed).
		Error
	if err != nil {
		return nil, err
	}
	return failed, nil
}

// PayloadFromVerified builds the save payload from a successful gateway verify response.
// Only gateway fields are used.
func PayloadFromVerified(res *lib.VerifyResponse) *types.SaveTransactionRequestBody {
	d := res.Data
	payload := &types.SaveTransactionRequestBody{
		TransactionID: d.ID.String(),
		TxRef:         d.TxRef,
		FlwRef:        d.FlwRef,
		Amount:        d.Amount,
		Currency:      d.Currency,
		PaymentType:   d.PaymentType,
		Customer: types.Customer{
			Email:       d.Customer.Email,
			PhoneNumber: d.Customer.PhoneNumber,
			Name:        d.Customer.Name,
		},
		PaymentDate:     d.CreatedAt,
		Status:          types.TransactionStatus(d.Status),
		GatewayResponse: res.Raw,
	}
	if !payload.Status.Valid() {
		payload.Status = types.TRANSACTION_SUCCESSFUL
	}
	return payload
}
