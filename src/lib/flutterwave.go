package lib

import (
	"bookstore/src/config"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

const (
	flutterwaveStatusSuccess    = "success"
	flutterwaveStatusSuccessful = "successful"
	flutterwaveTimeout          = 30 * time.Second
)

// PaymentGateway verifies a payment with the gateway that processed it.
type PaymentGateway interface {
	VerifyTransaction(ctx context.Context, id string) (*VerifyResponse, error)
}

// GatewayID accepts both numeric and string ids.
type GatewayID string

func (g *GatewayID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*g = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*g = GatewayID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid gateway id %s: %w", string(b), err)
	}
	*g = GatewayID(n.String())
	return nil
}

func (g GatewayID) String() string {
	return string(g)
}

type GatewayCustomer struct {
	ID          GatewayID `json:"id,omitempty"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Email       string    `json:"email"`
}

type TransactionDetail struct {
	ID          GatewayID       `json:"id"`
	TxRef       string          `json:"tx_ref"`
	FlwRef      string          `json:"flw_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	PaymentType string          `json:"payment_type"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
	Customer    GatewayCustomer `json:"customer"`
}

type VerifyResponse struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Data    *TransactionDetail `json:"data"`

	// Raw is the body exactly as the gateway sent it.
	Raw json.RawMessage `json:"-"`
}

// Successful reports whether both the envelope and the payment itself succeeded.
func (v *VerifyResponse) Successful() bool {
	return v != nil &&
		v.Status == flutterwaveStatusSuccess &&
		v.Data != nil &&
		v.Data.Status == flutterwaveStatusSuccessful
}

func (v *VerifyResponse) Describe() string {
	if v == nil {
		return "empty gateway response"
	}
	dataStatus := "<nil>"
	if v.Data != nil {
		dataStatus = v.Data.Status
	}
	return fmt.Sprintf("status=%s data.status=%s message=%s", v.Status, dataStatus, v.Message)
}

type FlutterwaveClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewFlutterwaveClient(baseURL, secretKey string) *FlutterwaveClient {
	return &FlutterwaveClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: flutterwaveTimeout},
	}
}

// VerifyTransaction calls GET /v3/transactions/{id}/verify. A non-2xx answer with a JSON body is
// returned as a decoded envelope, not as an error; only transport and decode failures are errors.
func (c *FlutterwaveClient) VerifyTransaction(ctx context.Context, id string) (*VerifyResponse, error) {
	if id == "" {
		return nil, errors.New("transaction id is required")
	}
	endpoint := fmt.Sprintf("%s/v3/transactions/%s/verify", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify request failed: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var out VerifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response (%d): %w", res.StatusCode, err)
	}
	out.Raw = json.RawMessage(body)
	if res.StatusCode >= http.StatusInternalServerError {
		return &out, fmt.Errorf("gateway error (%d): %s", res.StatusCode, out.Message)
	}
	return &out, nil
}

var paymentGateway PaymentGateway

func GetPaymentGateway() PaymentGateway {
	if paymentGateway != nil {
		return paymentGateway
	}
	if config.FlutterwaveSecretKey() == "" {
		log.Println("[flutterwave] FLUTTERWAVE_SECRET_KEY is not set")
	}
	paymentGateway = NewFlutterwaveClient(config.FlutterwaveBaseURL(), config.FlutterwaveSecretKey())
	return paymentGateway
}

// NewPaymentGateway replaces the gateway instance with a custom implementation
func NewPaymentGateway(g PaymentGateway) PaymentGateway {
	paymentGateway = g
	return paymentGateway
}
