/*
resend.go - Resend REST API dispatcher

POST https://api.resend.com/emails with a bearer key. Attachments are
base64-encoded inline. Any transport or API error surfaces as an
ExternalServiceError; retry policy is left to the caller (in practice:
none, notifications are best-effort).
*/
package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ablelink/invest-engine/invest"
)

const defaultResendURL = "https://api.resend.com/emails"

// Resend sends email through the Resend transactional API.
type Resend struct {
	// APIKey is required. Missing key is a startup configuration error,
	// checked by config, not here.
	APIKey string

	// From is the sender, e.g. `Platform <onboarding@resend.dev>`.
	From string

	// AdminEmail receives the admin-class notifications (new users, new
	// submissions).
	AdminEmail string

	// BaseURL overrides the API endpoint; tests point this at a local server.
	BaseURL string

	// Client defaults to a client with a 15s timeout.
	Client *http.Client
}

var _ Dispatcher = (*Resend)(nil)

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

type resendRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

func (r *Resend) send(ctx context.Context, to, subject, html string, attachments []resendAttachment) error {
	url := r.BaseURL
	if url == "" {
		url = defaultResendURL
	}
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	payload, err := json.Marshal(resendRequest{
		From:        r.From,
		To:          []string{to},
		Subject:     subject,
		HTML:        html,
		Attachments: attachments,
	})
	if err != nil {
		return &invest.ExternalServiceError{Service: "resend", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &invest.ExternalServiceError{Service: "resend", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+r.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &invest.ExternalServiceError{Service: "resend", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &invest.ExternalServiceError{
			Service: "resend",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, body),
		}
	}
	return nil
}

func (r *Resend) SendWelcome(ctx context.Context, u invest.UserProfile) error {
	subject, html := welcomeMessage(u)
	return r.send(ctx, u.Email, subject, html, nil)
}

func (r *Resend) SendAdminNewUser(ctx context.Context, u invest.UserProfile) error {
	subject, html := adminNewUserMessage(u)
	return r.send(ctx, r.AdminEmail, subject, html, nil)
}

func (r *Resend) SendInvestmentRequest(ctx context.Context, u invest.UserProfile, inv InvestmentDetails) error {
	subject, html := investmentRequestMessage(u, inv)
	return r.send(ctx, r.AdminEmail, subject, html, nil)
}

func (r *Resend) SendInvestmentStatusUpdate(ctx context.Context, u invest.UserProfile, inv InvestmentDetails, status invest.InvestmentStatus) error {
	subject, html := investmentStatusMessage(u, inv, status)
	return r.send(ctx, u.Email, subject, html, nil)
}

func (r *Resend) SendWithdrawalRequest(ctx context.Context, u invest.UserProfile, w WithdrawalDetails) error {
	subject, html := withdrawalRequestMessage(u, w)
	return r.send(ctx, r.AdminEmail, subject, html, nil)
}

func (r *Resend) SendWithdrawalStatusUpdate(ctx context.Context, u invest.UserProfile, w WithdrawalDetails, status invest.WithdrawalStatus) error {
	subject, html := withdrawalStatusMessage(u, w, status)
	return r.send(ctx, u.Email, subject, html, nil)
}

func (r *Resend) SendPortfolioReport(ctx context.Context, u invest.UserProfile, workbook []byte, dateRange string) error {
	subject, html := portfolioReportMessage(u, dateRange)
	attachments := []resendAttachment{{
		Filename: "portfolio-report.xlsx",
		Content:  base64.StdEncoding.EncodeToString(workbook),
	}}
	return r.send(ctx, u.Email, subject, html, attachments)
}

func (r *Resend) SendWindowOpen(ctx context.Context, u invest.UserProfile, start, end time.Time) error {
	subject, html := windowOpenMessage(u, start, end)
	return r.send(ctx, u.Email, subject, html, nil)
}
