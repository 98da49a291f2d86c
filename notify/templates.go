/*
templates.go - HTML bodies for transactional emails

Inline-styled HTML tables, matching what the platform has always sent. Kept as
small template helpers rather than a template engine: the payloads are flat
and the layouts fixed.
*/
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ablelink/invest-engine/invest"
)

const dateLayout = "02/01/2006" // en-GB, as rendered across the platform

// naira formats an amount as Nigerian currency with thousands separators.
func naira(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "₦" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func wrap(title, body string) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">
    <h2 style="color: #0A192F;">%s</h2>
    %s
    <hr style="border: 0; border-top: 1px solid #eee; margin: 20px 0;">
    <p style="font-size: 12px; color: #999;">This is an automated notification from the investment platform.</p>
  </div>
</div>`, title, body)
}

func userDetailsHTML(u invest.UserProfile) string {
	return fmt.Sprintf(`<h3>User Details</h3>
<ul>
  <li><strong>Full Name:</strong> %s</li>
  <li><strong>Email Address:</strong> %s</li>
  <li><strong>WhatsApp Number:</strong> %s</li>
</ul>
<h3>User Bank Details</h3>
<ul>
  <li><strong>Bank Name:</strong> %s</li>
  <li><strong>Account Name:</strong> %s</li>
  <li><strong>Account Number:</strong> %s</li>
</ul>`, u.FullName, u.Email, u.WhatsAppNumber, u.BankName, u.AccountName, u.AccountNumber)
}

func investmentDetailsHTML(inv InvestmentDetails) string {
	return fmt.Sprintf(`<h3>Investment Details</h3>
<ul>
  <li><strong>Investment ID:</strong> %s</li>
  <li><strong>Plan:</strong> %s</li>
  <li><strong>Amount:</strong> %s</li>
  <li><strong>Date:</strong> %s</li>
</ul>`, inv.DisplayID, inv.Type, naira(inv.Amount), inv.Date.Format(dateLayout))
}

func withdrawalDetailsHTML(w WithdrawalDetails) string {
	return fmt.Sprintf(`<h3>Withdrawal Details</h3>
<ul>
  <li><strong>Withdrawal ID:</strong> %s</li>
  <li><strong>Requested Amount:</strong> %s</li>
  <li><strong>Management Fee:</strong> %s</li>
  <li><strong>Payout Amount:</strong> %s</li>
  <li><strong>Date:</strong> %s</li>
</ul>`, w.DisplayID, naira(w.Amount), naira(w.Fee), naira(w.PayoutAmount), w.Date.Format(dateLayout))
}

// =============================================================================
// MESSAGE BUILDERS - (subject, html) per notification kind
// =============================================================================

func welcomeMessage(u invest.UserProfile) (string, string) {
	firstName, _, _ := strings.Cut(u.FullName, " ")
	if firstName == "" {
		firstName = u.FullName
	}
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>Welcome aboard. Your account has been created and you can now submit your
first investment during the monthly window (the 1st and 2nd of every month,
shifted past weekends and public holidays).</p>`, firstName)
	return "Welcome to the platform", wrap("Welcome", body)
}

func adminNewUserMessage(u invest.UserProfile) (string, string) {
	body := "<p>A new user has created an account on the platform.</p>" + userDetailsHTML(u)
	return "New User Registration: " + u.FullName, wrap("New User Registration", body)
}

func investmentRequestMessage(u invest.UserProfile, inv InvestmentDetails) (string, string) {
	body := "<p>A new investment has been submitted and is awaiting approval.</p>" +
		userDetailsHTML(u) + investmentDetailsHTML(inv)
	return fmt.Sprintf("New Investment: %s from %s", naira(inv.Amount), u.FullName),
		wrap("New Investment Submitted", body)
}

func investmentStatusMessage(u invest.UserProfile, inv InvestmentDetails, status invest.InvestmentStatus) (string, string) {
	body := fmt.Sprintf("<p>Dear %s,</p><p>Your investment has been <strong>%s</strong>.</p>",
		u.FullName, status) + investmentDetailsHTML(inv)
	return fmt.Sprintf("Investment %s: %s", status, inv.DisplayID),
		wrap("Investment Update", body)
}

func withdrawalRequestMessage(u invest.UserProfile, w WithdrawalDetails) (string, string) {
	body := "<p>A new withdrawal request has been submitted and is awaiting processing.</p>" +
		userDetailsHTML(u) + withdrawalDetailsHTML(w)
	return fmt.Sprintf("New Withdrawal Request: %s from %s", naira(w.Amount), u.FullName),
		wrap("New Withdrawal Request", body)
}

func withdrawalStatusMessage(u invest.UserProfile, w WithdrawalDetails, status invest.WithdrawalStatus) (string, string) {
	body := fmt.Sprintf("<p>Dear %s,</p><p>Your withdrawal request has been marked <strong>%s</strong>.</p>",
		u.FullName, status) + withdrawalDetailsHTML(w)
	return fmt.Sprintf("Withdrawal %s: %s", status, w.DisplayID),
		wrap("Withdrawal Update", body)
}

func portfolioReportMessage(u invest.UserProfile, dateRange string) (string, string) {
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>Please find attached your full portfolio report (%s), covering your
investments and withdrawal history.</p>`, u.FullName, dateRange)
	return "Your Portfolio Report", wrap("Portfolio Report", body)
}

func windowOpenMessage(u invest.UserProfile, start, end time.Time) (string, string) {
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>The monthly submission window is now open. New investments and withdrawal
requests can be submitted from <strong>%s</strong> to <strong>%s</strong>
inclusive.</p>`, u.FullName, start.Format(dateLayout), end.Format(dateLayout))
	return "Submission Window Open", wrap("Submission Window Open", body)
}
