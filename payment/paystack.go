/*
Package payment initializes hosted checkout transactions with Paystack.

PURPOSE:
  Submitting an investment starts with a payment: the platform initializes a
  Paystack transaction for the user's email and principal, redirects the user
  to the returned authorization URL, and uses the transaction reference as the
  investment's display id. The investment document is only persisted after
  initialization has succeeded, so a gateway failure never leaves a dangling
  record.

  Amounts are naira; Paystack expects kobo, so the request carries the amount
  multiplied by 100 and rounded.
*/
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ablelink/invest-engine/invest"
)

const defaultInitializeURL = "https://api.paystack.co/transaction/initialize"

// Initializer creates hosted checkout sessions.
type Initializer interface {
	Initialize(ctx context.Context, email string, amount decimal.Decimal) (Transaction, error)
}

// Transaction is the initialized checkout session.
type Transaction struct {
	AuthorizationURL string
	AccessCode       string
	// Reference becomes the investment's display id.
	Reference string
}

// Paystack implements Initializer against the Paystack REST API.
type Paystack struct {
	// SecretKey is required; checked at startup by config.
	SecretKey string

	// CallbackURL is where Paystack redirects after checkout.
	CallbackURL string

	// BaseURL overrides the endpoint; tests point this at a local server.
	BaseURL string

	// Client defaults to a client with a 15s timeout.
	Client *http.Client
}

var _ Initializer = (*Paystack)(nil)

type initializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"` // kobo
	CallbackURL string `json:"callback_url,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// Initialize starts a checkout session for the given payer and naira amount.
func (p *Paystack) Initialize(ctx context.Context, email string, amount decimal.Decimal) (Transaction, error) {
	url := p.BaseURL
	if url == "" {
		url = defaultInitializeURL
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	kobo := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	payload, err := json.Marshal(initializeRequest{
		Email:       email,
		Amount:      kobo,
		CallbackURL: p.CallbackURL,
	})
	if err != nil {
		return Transaction{}, &invest.ExternalServiceError{Service: "paystack", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Transaction{}, &invest.ExternalServiceError{Service: "paystack", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Transaction{}, &invest.ExternalServiceError{Service: "paystack", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Transaction{}, &invest.ExternalServiceError{Service: "paystack", Err: err}
	}

	var parsed initializeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Transaction{}, &invest.ExternalServiceError{
			Service: "paystack",
			Err:     fmt.Errorf("status %d: unparsable response", resp.StatusCode),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !parsed.Status {
		return Transaction{}, &invest.ExternalServiceError{
			Service: "paystack",
			Err:     fmt.Errorf("initialize failed: %s", parsed.Message),
		}
	}
	if parsed.Data.Reference == "" || parsed.Data.AuthorizationURL == "" {
		return Transaction{}, &invest.ExternalServiceError{
			Service: "paystack",
			Err:     fmt.Errorf("initialize returned no reference"),
		}
	}

	return Transaction{
		AuthorizationURL: parsed.Data.AuthorizationURL,
		AccessCode:       parsed.Data.AccessCode,
		Reference:        parsed.Data.Reference,
	}, nil
}
