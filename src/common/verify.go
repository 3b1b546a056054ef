package common

import (
	"bookstore/src/config"
	"bookstore/src/lib"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
)

// Verifier re-checks a payment with the gateway a bounded number of times,
// waiting a fixed delay between attempts.
type Verifier struct {
	gateway  lib.PaymentGateway
	clock    clockwork.Clock
	attempts int
	delay    time.Duration
}

func NewVerifier(gateway lib.PaymentGateway, clock clockwork.Clock, attempts int, delay time.Duration) *Verifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if attempts < 1 {
		attempts = config.DEFAULT_VERIFY_ATTEMPTS
	}
	if delay < 0 {
		delay = 0
	}
	return &Verifier{gateway: gateway, clock: clock, attempts: attempts, delay: delay}
}

func (v *Verifier) Attempts() int {
	return v.attempts
}

// MaxDuration is the longest a single VerifyWithRetry call waits between attempts.
func (v *Verifier) MaxDuration() time.Duration {
	return time.Duration(v.attempts-1) * v.delay
}

// VerifyOnce calls the gateway a single time. A response that is not successful is returned
// alongside a nil error; callers decide what to do with it.
func (v *Verifier) VerifyOnce(ctx context.Context, id string) (*lib.VerifyResponse, error) {
	return v.gateway.VerifyTransaction(ctx, id)
}

// VerifyWithRetry returns on the first successful verification. After the last failed attempt
// it returns ErrVerificationExhausted wrapping the last cause.
func (v *Verifier) VerifyWithRetry(ctx context.Context, id string) (*lib.VerifyResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= v.attempts; attempt++ {
		res, err := v.gateway.VerifyTransaction(ctx, id)
		if err == nil && res.Successful() {
			if attempt > 1 {
				log.Printf("[verify] Transaction %s verified on attempt %d\n", id, attempt)
			}
			return res, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("gateway did not confirm payment: %s", res.Describe())
		}
		log.Printf("[verify] Attempt %d/%d for transaction %s failed: %s\n", attempt, v.attempts, id, lastErr.Error())
		if attempt == v.attempts {
			break
		}
		if v.delay == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("verification of %s aborted: %w", id, err)
			}
			continue
		}
		select {
		case <-v.clock.After(v.delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("verification of %s aborted: %w", id, ctx.Err())
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrVerificationExhausted, v.attempts, lastErr)
}
